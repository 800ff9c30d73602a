package rules

import (
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a condition document encoding
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown condition format %q", name)
}

// SpecOf returns the serializable form of a single condition. Operands are
// written inline.
func SpecOf(c Condition) Spec {
	s := Spec{ID: c.ID(), Type: c.Type(), Params: c.Params()}
	if comp, ok := c.(Composite); ok {
		for _, op := range comp.Operands() {
			s.Operands = append(s.Operands, SpecOf(op))
		}
	}
	return s
}

// Document returns the registry as a document sorted by id
func (e *Engine) Document() Document {
	var doc Document
	for _, id := range e.Conditions() {
		doc.Conditions = append(doc.Conditions, e.specOf(e.conditions[id], true))
	}

	panels := make([]string, 0, len(e.panelConditions))
	for id := range e.panelConditions {
		panels = append(panels, id)
	}
	sort.Strings(panels)
	for _, id := range panels {
		doc.PanelConditions = append(doc.PanelConditions, PanelCondition{PanelID: id, ConditionID: e.panelConditions[id]})
	}

	packs := make([]string, 0, len(e.packConditions))
	for id := range e.packConditions {
		packs = append(packs, id)
	}
	sort.Strings(packs)
	for _, id := range packs {
		doc.PackConditions = append(doc.PackConditions, PackCondition{
			PackID:      id,
			ConditionID: e.packConditions[id],
			Optional:    e.optionalPacks[id],
		})
	}
	return doc
}

// specOf writes registered operands as references and built-in operands
// inline with their id. Other operands are written inline without an id so
// that loading does not register them.
func (e *Engine) specOf(c Condition, top bool) Spec {
	id := c.ID()
	if !top {
		_, builtin := e.builtins[id]
		if !builtin && e.conditions[id] == c {
			return Spec{Type: TypeRef, Params: map[string]string{ParamRefID: id}}
		}
		if !builtin {
			id = ""
		}
	}
	s := Spec{ID: id, Type: c.Type(), Params: c.Params()}
	if comp, ok := c.(Composite); ok {
		for _, op := range comp.Operands() {
			s.Operands = append(s.Operands, e.specOf(op, false))
		}
	}
	return s
}

// WriteConditions writes every registered condition and the gating tables
func (e *Engine) WriteConditions(w io.Writer, format Format) error {
	doc := e.Document()
	var err error
	switch format {
	case FormatXML:
		err = writeXML(w, doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(doc)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown condition format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write %s conditions", format)
	}
	e.logger.Debug().Int("conditions", len(doc.Conditions)).Str("format", string(format)).Msg("Conditions written")
	return nil
}

// LoadConditions registers a condition set previously written by
// WriteConditions. Built-in conditions in the snapshot are replaced by the
// engine's own instances, including those nested in operands.
func (e *Engine) LoadConditions(r io.Reader, format Format) error {
	var doc Document
	switch format {
	case FormatXML:
		root, err := readXML(r)
		if err != nil {
			return err
		}
		if doc, err = documentFromXML(root); err != nil {
			return err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return errors.Wrap(err, errors.ErrConfigParse, "failed to parse yaml conditions")
		}
	case FormatTOML:
		if err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return errors.Wrap(err, errors.ErrConfigParse, "failed to parse toml conditions")
		}
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown condition format %q", format)
	}
	return e.apply(doc, true)
}

func writeXML(w io.Writer, doc Document) error {
	xdoc := etree.NewDocument()
	xdoc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := xdoc.CreateElement(elemConditions)

	for _, s := range doc.Conditions {
		specToXML(root, s)
	}
	for _, pc := range doc.PanelConditions {
		el := root.CreateElement(elemPanelCondition)
		el.CreateAttr(attrPanelID, pc.PanelID)
		el.CreateAttr(attrConditionID, pc.ConditionID)
	}
	for _, pc := range doc.PackConditions {
		el := root.CreateElement(elemPackCondition)
		el.CreateAttr(attrPackID, pc.PackID)
		el.CreateAttr(attrConditionID, pc.ConditionID)
		if pc.Optional {
			el.CreateAttr(attrOptional, "true")
		}
	}

	xdoc.Indent(2)
	_, err := xdoc.WriteTo(w)
	return err
}

// specToXML writes the refid as an attribute and other params as child
// elements, in name order
func specToXML(parent *etree.Element, s Spec) {
	el := parent.CreateElement(elemCondition)
	if s.ID != "" {
		el.CreateAttr(attrID, s.ID)
	}
	el.CreateAttr(attrType, s.Type)

	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == ParamRefID {
			el.CreateAttr(name, s.Params[name])
			continue
		}
		el.CreateElement(name).SetText(s.Params[name])
	}
	for _, op := range s.Operands {
		specToXML(el, op)
	}
}
