// Package rules provides the condition engine that decides which panels an
// installer shows and which packs it may install.
//
// Conditions are named boolean predicates over install variables, the
// platform and the current pack selection. They are registered in an Engine
// under unique ids and may refer to each other by id.
//
// # Condition Types
//
// Each type is built from a Spec (id, type name, parameters, operands):
//
//   - `and`, `or` - one or more operands, evaluated in order with short-circuit
//   - `xor` - exactly two operands
//   - `not` - exactly one operand
//   - `ref` - the condition registered as `refid`
//   - `static` - a fixed `value`, used for built-in platform checks
//   - `variable` - variable `name` equals `value`
//   - `contains` - variable value contains `value`
//   - `exists`, `empty` - checks on a `variable`, `file` or `dir`
//   - `comparenumerics`, `compareversions` - comparisons with an `operator`
//   - `user` - the installing user is `requiredusername`
//   - `packselection` - pack `packid` is selected
//   - `custom` - a predicate registered with Engine.RegisterPredicate
//
// # Expressions
//
// Anywhere a condition id is accepted an expression may be given instead.
// Shorthand expressions use `|` (or), `+` (and), `\` (xor) and a leading `!`
// (not):
//
//	platform.linux+!platform.arch.arm|force
//
// Complex expressions start with `@` and use `||`, `&&`, `^` and `!`:
//
//	@platform.linux&&!platform.arch.arm||force
//
// Both split at the first occurrence of the lowest binding operator, so the
// examples above group as (linux AND NOT arm) OR force.
//
// # Built-in Conditions
//
// Every engine starts with one static condition per platform check, with
// ids such as `platform.linux` or `platform.linux.debian`, and one
// `pack.selected.<id>` condition per pack passed to WithPacks.
//
// # Documents
//
// Condition sets are read from XML with Analyze:
//
//	<conditions>
//	  <condition id="wants.docs" type="variable">
//	    <name>INSTALL_DOCS</name>
//	    <value>yes</value>
//	  </condition>
//	  <packcondition packid="docs" conditionid="wants.docs" optional="true"/>
//	  <panelcondition panelid="docs.panel" conditionid="wants.docs"/>
//	</conditions>
//
// WriteConditions and LoadConditions persist a resolved set as XML, YAML or
// TOML.
package rules
