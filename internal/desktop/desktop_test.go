package desktop

import (
	"reflect"
	"testing"

	"myreboot/internal/dlgtemplate"
)

func sampleTemplate(withCheckbox bool) *dlgtemplate.Template {
	t := &dlgtemplate.Template{
		Title: "my-reboot",
		Items: []dlgtemplate.Item{
			{Kind: dlgtemplate.OptionButton, ID: 500, Title: "Reboot into Windows"},
			{Kind: dlgtemplate.OptionButton, ID: 501, Title: "Reboot into Linux"},
		},
	}
	if withCheckbox {
		t.Items = append(t.Items, dlgtemplate.Item{Kind: dlgtemplate.Checkbox, ID: 600, Title: "Switch to TV"})
	}
	t.Items = append(t.Items,
		dlgtemplate.Item{Kind: dlgtemplate.DefaultPushButton, ID: 1, Title: "OK"},
		dlgtemplate.Item{Kind: dlgtemplate.PushButton, ID: 2, Title: "Cancel"},
	)
	return t
}

func TestFromTemplate(t *testing.T) {
	d := FromTemplate(sampleTemplate(true), 1, 2)
	if len(d.Options) != 2 || d.Checkbox == nil || d.Checkbox.ID != 600 {
		t.Fatalf("dialog = %+v", d)
	}
	if d.OK != "OK" || d.Cancel != "Cancel" {
		t.Fatalf("labels = %q %q", d.OK, d.Cancel)
	}
	if FromTemplate(sampleTemplate(false), 1, 2).Checkbox != nil {
		t.Fatalf("unexpected checkbox")
	}
}

func TestZenityListArgs(t *testing.T) {
	d := FromTemplate(sampleTemplate(false), 1, 2)
	got := d.ZenityListArgs(501)
	tail := got[len(got)-6:]
	want := []string{"FALSE", "500", "Reboot into Windows", "TRUE", "501", "Reboot into Linux"}
	if !reflect.DeepEqual(tail, want) {
		t.Fatalf("rows = %q", tail)
	}
}

func TestKDialogListArgs(t *testing.T) {
	d := FromTemplate(sampleTemplate(false), 1, 2)
	got := d.KDialogListArgs(500)
	want := []string{"--title", "my-reboot", "--radiolist", "my-reboot",
		"500", "Reboot into Windows", "on", "501", "Reboot into Linux", "off"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %q", got)
	}
}

func TestParseChoice(t *testing.T) {
	d := FromTemplate(sampleTemplate(false), 1, 2)
	tests := []struct {
		out     string
		want    uint32
		wantErr bool
	}{
		{"500\n", 500, false},
		{"501|501\n", 501, false},
		{"", 0, true},
		{"502\n", 0, true},
		{"Reboot", 0, true},
	}
	for _, tt := range tests {
		got, err := d.ParseChoice(tt.out)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseChoice(%q) = %d, %v", tt.out, got, err)
		}
	}
}
