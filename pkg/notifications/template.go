package notifications

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Template shapes the notification built for a transition. Title, Content
// and LinkURL accept the placeholders {type} {id} {name} {from} {to}
// {actor} and {comment}.
type Template struct {
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Category Category `yaml:"category"`
	Priority Priority `yaml:"priority"`
	LinkURL  string   `yaml:"link_url"`
}

// Templates is a lookup table keyed by template name.
type Templates map[string]Template

// DefaultTemplate is used when a transition names no template or an unknown
// one.
var DefaultTemplate = Template{
	Title:    "{type} updated",
	Content:  "{type}: {name} changed {from} → {to}",
	Category: CategoryWorkflow,
	Priority: PriorityNormal,
}

// Lookup returns the named template or DefaultTemplate.
func (t Templates) Lookup(name string) Template {
	if name == "" {
		return DefaultTemplate
	}
	if tpl, ok := t[name]; ok {
		return tpl
	}
	return DefaultTemplate
}

// LoadTemplates decodes a YAML document of the form:
//
//	change_notice_approved:
//	  title: "{type} approved"
//	  content: "{name} was approved by {actor}"
//	  category: approval
//	  priority: 2
func LoadTemplates(r io.Reader) (Templates, error) {
	var out Templates
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return Templates{}, nil
		}
		return nil, fmt.Errorf("decode notification templates: %w", err)
	}
	if out == nil {
		out = Templates{}
	}
	return out, nil
}

// Render fills the template placeholders from msg. In LinkURL {type} is the
// raw entity type tag rather than its humanized form.
func (t Template) Render(msg Message) (title, content, link string) {
	pairs := []string{
		"{id}", msg.EntityID,
		"{name}", msg.displayName(),
		"{from}", msg.From,
		"{to}", msg.To,
		"{actor}", msg.actorLabel(),
		"{comment}", msg.Comment,
	}
	text := strings.NewReplacer(append(pairs, "{type}", HumanizeType(msg.EntityType))...)
	url := strings.NewReplacer(append(pairs, "{type}", msg.EntityType)...)
	return text.Replace(t.Title), text.Replace(t.Content), url.Replace(t.LinkURL)
}

// HumanizeType turns an entity type tag like "change_notice" into
// "Change Notice".
func HumanizeType(entityType string) string {
	if entityType == "" {
		return "Entity"
	}
	s := strings.NewReplacer("_", " ", "-", " ").Replace(entityType)
	return cases.Title(language.English).String(s)
}
