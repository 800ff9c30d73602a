package rules

import (
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/beevik/etree"
)

// XML element and attribute names of a condition document
const (
	elemConditions     = "conditions"
	elemCondition      = "condition"
	elemPanelCondition = "panelcondition"
	elemPackCondition  = "packcondition"

	attrID          = "id"
	attrType        = "type"
	attrPanelID     = "panelid"
	attrPackID      = "packid"
	attrConditionID = "conditionid"
	attrOptional    = "optional"
)

// Analyze reads an XML condition document and registers its conditions,
// panel conditions and pack conditions.
func (e *Engine) Analyze(r io.Reader) error {
	root, err := readXML(r)
	if err != nil {
		return err
	}
	return e.AnalyzeDocument(root)
}

// AnalyzeDocument registers the conditions held by an XML element. Child
// <condition> elements become conditions, <panelcondition> and
// <packcondition> elements fill the gating tables.
func (e *Engine) AnalyzeDocument(root *etree.Element) error {
	doc, err := documentFromXML(root)
	if err != nil {
		return err
	}
	return e.apply(doc, false)
}

// apply registers a decoded document. With skipBuiltins, top-level specs
// carrying a built-in id are dropped in favour of the engine's instances.
func (e *Engine) apply(doc Document, skipBuiltins bool) error {
	created := 0
	for _, s := range doc.Conditions {
		if skipBuiltins && e.IsBuiltin(strings.TrimSpace(s.ID)) {
			e.logger.Debug().Str("id", s.ID).Msg("Skipping built-in condition from snapshot")
			continue
		}
		if _, err := e.CreateCondition(s); err != nil {
			return err
		}
		created++
	}
	for _, pc := range doc.PanelConditions {
		if pc.PanelID == "" || pc.ConditionID == "" {
			return errors.New(errors.ErrConditionInvalid, "panel condition needs panelid and conditionid")
		}
		e.AddPanelCondition(pc.PanelID, pc.ConditionID)
	}
	for _, pc := range doc.PackConditions {
		if pc.PackID == "" || pc.ConditionID == "" {
			return errors.New(errors.ErrConditionInvalid, "pack condition needs packid and conditionid")
		}
		e.AddPackCondition(pc.PackID, pc.ConditionID, pc.Optional)
	}

	e.logger.Info().
		Int("conditions", created).
		Int("panels", len(doc.PanelConditions)).
		Int("packs", len(doc.PackConditions)).
		Msg("Conditions loaded")
	return nil
}

func readXML(r io.Reader) (*etree.Element, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse condition document")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrConfigParse, "condition document has no root element")
	}
	return root, nil
}

func documentFromXML(root *etree.Element) (Document, error) {
	var doc Document
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case elemCondition:
			doc.Conditions = append(doc.Conditions, specFromXML(el))
		case elemPanelCondition:
			doc.PanelConditions = append(doc.PanelConditions, PanelCondition{
				PanelID:     el.SelectAttrValue(attrPanelID, ""),
				ConditionID: el.SelectAttrValue(attrConditionID, ""),
			})
		case elemPackCondition:
			pc := PackCondition{
				PackID:      el.SelectAttrValue(attrPackID, ""),
				ConditionID: el.SelectAttrValue(attrConditionID, ""),
			}
			if raw := el.SelectAttrValue(attrOptional, ""); raw != "" {
				optional, err := strconv.ParseBool(raw)
				if err != nil {
					return doc, errors.Newf(errors.ErrConfigParse, "invalid optional flag %q", raw).
						WithDetail("packid", pc.PackID)
				}
				pc.Optional = optional
			}
			doc.PackConditions = append(doc.PackConditions, pc)
		}
	}
	return doc, nil
}

// specFromXML turns a <condition> element into a spec. Attributes other
// than id and type, and child elements other than <condition>, are params.
func specFromXML(el *etree.Element) Spec {
	s := Spec{
		ID:     el.SelectAttrValue(attrID, ""),
		Type:   el.SelectAttrValue(attrType, ""),
		Params: make(map[string]string),
	}
	for _, attr := range el.Attr {
		if attr.Key == attrID || attr.Key == attrType {
			continue
		}
		s.Params[attr.Key] = attr.Value
	}
	for _, child := range el.ChildElements() {
		if child.Tag == elemCondition {
			s.Operands = append(s.Operands, specFromXML(child))
			continue
		}
		s.Params[child.Tag] = strings.TrimSpace(child.Text())
	}
	return s
}
