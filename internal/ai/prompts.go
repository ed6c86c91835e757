package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/amishk599/uxcelerator/internal/model"
)

// Prompt slot names.
const (
	SlotWebpageContent = "webpage_content"
	SlotTask           = "task"
	SlotGoal           = "goal"
)

// DefaultGoal is used when a request does not state what visitors want.
const DefaultGoal = "find the information they came for quickly and take the next step the website offers"

// Tasks are the fixed UX-analysis questions. Each one becomes an independent
// model call per request, and results are returned in this order.
var Tasks = []string{
	"is there any content we could add to the website to improve it?",
	"given what is already on the website, what could be changed visually in order to improve it? Given what is already on the website, how could the text / content be changed in order to improve it?",
}

//go:embed prompts/recommendation.md
var recommendationPromptRaw string

// RecommendationTemplate is the parsed prompt for UX recommendations.
// Parsed once at package init; reused on every request.
var RecommendationTemplate = MustPromptTemplate("recommendation", recommendationPromptRaw)

// PromptTemplate is a text template with named slots, e.g. {{.task}}.
// Values are substituted verbatim.
type PromptTemplate struct {
	tmpl  *template.Template
	slots []string
}

// NewPromptTemplate parses text and records the slots it references.
func NewPromptTemplate(name, text string) (*PromptTemplate, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &PromptTemplate{tmpl: tmpl, slots: collectSlots(tmpl.Tree.Root)}, nil
}

// MustPromptTemplate is like NewPromptTemplate but panics on a parse error.
func MustPromptTemplate(name, text string) *PromptTemplate {
	p, err := NewPromptTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return p
}

// Slots returns the slot names the template references, in first-use order.
func (p *PromptTemplate) Slots() []string {
	return append([]string(nil), p.slots...)
}

// requiredSlots must be supplied to every template, referenced or not.
var requiredSlots = []string{SlotWebpageContent, SlotTask}

// Render substitutes params into the template. webpage_content and task are
// always required; any other slot is required when the template references it.
func (p *PromptTemplate) Render(params map[string]string) (string, error) {
	for _, slot := range requiredSlots {
		if _, ok := params[slot]; !ok {
			return "", &model.MissingParameterError{Param: slot}
		}
	}
	for _, slot := range p.slots {
		if _, ok := params[slot]; !ok {
			return "", &model.MissingParameterError{Param: slot}
		}
	}

	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", p.tmpl.Name(), err)
	}
	return sb.String(), nil
}

// collectSlots walks the parse tree for {{.name}} references.
func collectSlots(node parse.Node) []string {
	var slots []string
	seen := make(map[string]bool)

	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, child := range n.Nodes {
				walk(child)
			}
		case *parse.ActionNode:
			walk(n.Pipe)
		case *parse.PipeNode:
			if n == nil {
				return
			}
			for _, cmd := range n.Cmds {
				for _, arg := range cmd.Args {
					walk(arg)
				}
			}
		case *parse.FieldNode:
			if len(n.Ident) > 0 && !seen[n.Ident[0]] {
				seen[n.Ident[0]] = true
				slots = append(slots, n.Ident[0])
			}
		case *parse.IfNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		}
	}
	walk(node)
	return slots
}
