// Package docs serves the embedded OpenAPI document and a Swagger UI page.
package docs

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.json
var openapiDoc []byte

//go:embed swagger.html
var page []byte

var (
	yamlOnce sync.Once
	yamlDoc  []byte
	yamlErr  error
)

// OpenAPI returns the raw document.
func OpenAPI() []byte { return openapiDoc }

// OpenAPIYAML renders the document as block-style YAML, keeping key order.
func OpenAPIYAML() ([]byte, error) {
	yamlOnce.Do(func() {
		var root yaml.Node
		if err := yaml.Unmarshal(openapiDoc, &root); err != nil {
			yamlErr = fmt.Errorf("parse openapi: %w", err)
			return
		}
		blockStyle(&root)
		yamlDoc, yamlErr = yaml.Marshal(&root)
	})
	return yamlDoc, yamlErr
}

// blockStyle drops the flow style the JSON source parses into.
func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func SpecHandler(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(openapiDoc)
}

func YAMLHandler(c *fiber.Ctx) error {
	b, err := OpenAPIYAML()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/yaml; charset=utf-8")
	return c.Send(b)
}

func UIHandler(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}
