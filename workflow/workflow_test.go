package workflow_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/workflow"
)

const workflowJSON = `{
	"last_node_id": 9,
	"nodes": [
		{"id": 3, "type": "KSampler", "title": "Refiner", "properties": {"Node name for S&R": "KSampler"}},
		{"id": 5, "type": "EmptyLatentImage", "properties": {}},
		{"id": 7, "type": "KSampler", "title": "Base", "properties": {"Node name for S&R": "Sampler2"}},
		{"id": 8, "type": "CLIPTextEncode", "title": "Positive"},
		{"id": "9", "type": "PrimitiveNode", "title": "Seed", "properties": {"Node name for S&R": "Seed"}}
	]
}`

const promptJSON = `{
	"3": {"class_type": "KSampler", "inputs": {"steps": 20, "cfg": 7.5, "denoise": "0.6", "sampler_name": "euler", "model": ["4", 0], "seed": 18446744073709551617}},
	"5": {"class_type": "EmptyLatentImage", "inputs": {"width": 512, "height": 768, "batch_size": 1}},
	"7": {"class_type": "KSampler", "inputs": {"steps": 30, "cfg": 4, "add_noise": true}},
	"9": {"class_type": "PrimitiveNode", "inputs": {"value": -12}}
}`

const workflowYAML = `
workflow:
  nodes:
    - id: 1
      type: Upscale
      title: Big
      properties:
        Node name for S&R: Upscale
`

const promptYAML = `
"1":
  class_type: Upscale
  inputs:
    scale: 1.5
    size: &sz 1024
    again: *sz
`

func load(t *testing.T, wf, p string) *workflow.Registry {
	t.Helper()
	r, err := workflow.Load(strings.NewReader(wf), strings.NewReader(p))
	if err != nil {
		t.Fatalf("couldn't load documents: %v", err)
	}
	return r
}

func TestWidget(t *testing.T) {
	cases := []struct {
		name   string
		wf, p  string
		node   string
		widget string
		want   string
	}{
		{"int", workflowJSON, promptJSON, "KSampler", "steps", "20"},
		{"float", workflowJSON, promptJSON, "KSampler", "cfg", "7.5"},
		{"string", workflowJSON, promptJSON, "KSampler", "denoise", "0.6"},
		{"exact", workflowJSON, promptJSON, "KSampler", "seed", "18446744073709551617"},
		{"type", workflowJSON, promptJSON, "EmptyLatentImage", "height", "768"},
		{"title", workflowJSON, promptJSON, "Base", "steps", "30"},
		{"search name", workflowJSON, promptJSON, "Sampler2", "cfg", "4"},
		{"title of first", workflowJSON, promptJSON, "Refiner", "steps", "20"},
		{"string id", workflowJSON, promptJSON, "Seed", "value", "-12"},
		{"yaml", workflowYAML, promptYAML, "Upscale", "scale", "1.5"},
		{"yaml title", workflowYAML, promptYAML, "Big", "size", "1024"},
		{"yaml alias", workflowYAML, promptYAML, "Upscale", "again", "1024"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := load(t, c.wf, c.p)
			x, err := r.Widget(c.node, c.widget)
			if err != nil {
				t.Fatalf("%s.%s gave error %v", c.node, c.widget, err)
			}
			if got := x.Text('g', -1); got != c.want {
				t.Errorf("%s.%s gave %s, want %s", c.node, c.widget, got, c.want)
			}
		})
	}
}

func TestWidgetErrors(t *testing.T) {
	cases := []struct {
		name   string
		node   string
		widget string
		kind   mathexpr.Kind
		scope  mathexpr.NameScope
	}{
		{"no node", "VAEDecode", "samples", mathexpr.KindName, mathexpr.ScopeNode},
		{"no widget", "KSampler", "scheduler", mathexpr.KindName, mathexpr.ScopeWidget},
		{"no prompt entry", "Positive", "text", mathexpr.KindName, mathexpr.ScopeWidget},
		{"shadowed type", "CLIPTextEncode", "text", mathexpr.KindName, mathexpr.ScopeWidget},
		{"link", "KSampler", "model", mathexpr.KindType, 0},
		{"text", "KSampler", "sampler_name", mathexpr.KindType, 0},
		{"bool", "Base", "add_noise", mathexpr.KindType, 0},
	}
	r := load(t, workflowJSON, promptJSON)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, err := r.Widget(c.node, c.widget)
			if err == nil {
				t.Fatalf("%s.%s gave %v with no error", c.node, c.widget, x)
			}
			if k := mathexpr.KindOf(err); k != c.kind {
				t.Errorf("%s.%s gave %v error %v, want %v", c.node, c.widget, k, err, c.kind)
			}
			if c.kind != mathexpr.KindName {
				return
			}
			var nerr *mathexpr.NameError
			if !errors.As(err, &nerr) {
				t.Fatalf("%s.%s gave %#v, not *NameError", c.node, c.widget, err)
			}
			if nerr.Scope != c.scope {
				t.Errorf("%s.%s missing in scope %v, want %v", c.node, c.widget, nerr.Scope, c.scope)
			}
			if want := c.node + "." + c.widget; nerr.Name != want {
				t.Errorf("%s.%s reported name %q", c.node, c.widget, nerr.Name)
			}
		})
	}
}

func TestFind(t *testing.T) {
	cases := []struct {
		name string
		id   workflow.NodeID
		ok   bool
	}{
		{"KSampler", "3", true},
		{"Refiner", "3", true},
		{"Sampler2", "7", true},
		{"Base", "7", true},
		{"EmptyLatentImage", "5", true},
		{"Positive", "8", true},
		{"CLIPTextEncode", "8", true},
		{"Seed", "9", true},
		{"PrimitiveNode", "", false},
		{"", "", false},
	}
	r := load(t, workflowJSON, promptJSON)
	for _, c := range cases {
		id, ok := r.Find(c.name)
		if id != c.id || ok != c.ok {
			t.Errorf("finding %q gave (%q, %t), want (%q, %t)", c.name, id, ok, c.id, c.ok)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	r, err := workflow.Load(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("couldn't load empty workflow: %v", err)
	}
	if _, ok := r.Find("KSampler"); ok {
		t.Error("found a node in an empty workflow")
	}
	_, err = r.Widget("KSampler", "steps")
	if mathexpr.KindOf(err) != mathexpr.KindName {
		t.Errorf("empty workflow gave %v", err)
	}
	if _, err := workflow.Load(nil, nil); err != nil {
		t.Errorf("couldn't load no documents: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name  string
		wf, p string
	}{
		{"workflow syntax", `{"nodes": [`, `{}`},
		{"nodes not a list", `{"nodes": 1}`, `{}`},
		{"id not a scalar", `{"nodes": [{"id": [1]}]}`, `{}`},
		{"prompt syntax", `{}`, `{"3": `},
		{"prompt not a map", `{}`, `[1, 2]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := workflow.Load(strings.NewReader(c.wf), strings.NewReader(c.p))
			if err == nil {
				t.Error("no error")
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	wf := filepath.Join(dir, "workflow.json")
	p := filepath.Join(dir, "prompt.yaml")
	if err := os.WriteFile(wf, []byte(workflowJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(promptJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := workflow.LoadFiles(wf, p)
	if err != nil {
		t.Fatalf("couldn't load files: %v", err)
	}
	x, err := r.Widget("EmptyLatentImage", "width")
	if err != nil {
		t.Fatal(err)
	}
	if x.Text('g', -1) != "512" {
		t.Errorf("wrong width %v", x)
	}
	if _, err := workflow.LoadFiles(filepath.Join(dir, "nope.json"), ""); err == nil {
		t.Error("no error loading missing file")
	}
	if _, err := workflow.LoadFiles("", ""); err != nil {
		t.Errorf("couldn't load no files: %v", err)
	}
}

func TestEvaluateWorkflow(t *testing.T) {
	r := load(t, workflowJSON, promptJSON)
	cases := []struct {
		expr string
		want mathexpr.Result
	}{
		{"KSampler.steps * 2", mathexpr.Result{Int: 40, Float: 40}},
		{"EmptyLatentImage.width / EmptyLatentImage.height", mathexpr.Result{Int: 0, Float: 512.0 / 768}},
		{"Base.steps - Refiner.steps + KSampler.cfg", mathexpr.Result{Int: 17, Float: 17.5}},
		{"round(KSampler.denoise * Seed.value)", mathexpr.Result{Int: -7, Float: -7}},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			got, err := mathexpr.Evaluate(c.expr, mathexpr.Widgets(r))
			if err != nil {
				t.Fatalf("%s gave error %v", c.expr, err)
			}
			if got != c.want {
				t.Errorf("%s gave %v, want %v", c.expr, got, c.want)
			}
		})
	}
}
