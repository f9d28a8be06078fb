// Package validation checks .toolgauge.yaml project files against an
// embedded JSON Schema before they are decoded, so a typo surfaces as a
// pointed message rather than a silently ignored setting.
package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed project.schema.json
var projectSchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// projectSchema is the compiled JSON Schema for .toolgauge.yaml files.
var projectSchema *jsonschema.Schema

func init() {
	projectSchema = mustCompileSchema(projectSchemaJSON, "project.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateProjectBytes validates raw .toolgauge.yaml content against the
// project schema. The returned slice is empty when the file is valid.
func ValidateProjectBytes(data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		// Empty file: every setting falls back to its default.
		return nil
	}

	instance, err := toJSONValue(yamlDoc)
	if err != nil {
		return []string{fmt.Sprintf("converting YAML document: %v", err)}
	}

	if err := projectSchema.Validate(instance); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return []string{fmt.Sprintf("schema: %v", err)}
		}
		var errs []string
		appendCauses(ve, &errs)
		return errs
	}
	return nil
}

// toJSONValue round-trips a YAML-decoded value through encoding/json so the
// schema validator sees the exact value shapes it expects.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// appendCauses flattens a validation error tree into leaf messages with
// their instance locations.
func appendCauses(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, cause := range ve.Causes {
		appendCauses(cause, errs)
	}
}
