package paper

import (
	"testing"
	"text/template"
)

func TestBuildPrompt_ExecuteError(t *testing.T) {
	orig := promptTemplate
	t.Cleanup(func() { promptTemplate = orig })
	promptTemplate = template.Must(template.New("prompt").Parse(`Create a {{.Subject}} test. {{template "missing"}}`))

	got, err := BuildPrompt(PromptInput{Subject: "Science"})
	if err == nil {
		t.Fatal("BuildPrompt() expected error")
	}
	if got != "" {
		t.Errorf("BuildPrompt() = %q, want no partial prompt", got)
	}
}
