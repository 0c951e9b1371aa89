package oaipmh

import (
	"reflect"
	"testing"
)

func TestTokenShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"bare token",
			`<OAI-PMH><ListRecords><resumptionToken>abc123</resumptionToken></ListRecords></OAI-PMH>`,
			"abc123",
		},
		{
			"token with attributes",
			`<OAI-PMH><ListRecords><resumptionToken completeListSize="900" cursor="100">next/200</resumptionToken></ListRecords></OAI-PMH>`,
			"next/200",
		},
		{
			"whitespace padded token",
			`<OAI-PMH><ListRecords><resumptionToken>
				tok-2
			</resumptionToken></ListRecords></OAI-PMH>`,
			"tok-2",
		},
		{
			"empty token element",
			`<OAI-PMH><ListRecords><resumptionToken/></ListRecords></OAI-PMH>`,
			"",
		},
		{
			"no token element",
			`<OAI-PMH><ListRecords></ListRecords></OAI-PMH>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := resp.ListRecords.Token(); got != tt.want {
				t.Errorf("Token() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenNilListRecords(t *testing.T) {
	var lr *ListRecords
	if lr.Token() != "" {
		t.Error("nil ListRecords must yield no token")
	}
}

func TestSingleRecordDecodesToSlice(t *testing.T) {
	body := `<OAI-PMH><ListRecords><record><header><identifier>oai:only:1</identifier></header></record></ListRecords></OAI-PMH>`
	resp, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(resp.ListRecords.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(resp.ListRecords.Records))
	}
	if resp.ListRecords.Records[0].Header.Identifier != "oai:only:1" {
		t.Errorf("identifier = %q", resp.ListRecords.Records[0].Header.Identifier)
	}
}

func TestFirstValue(t *testing.T) {
	if got := FirstValue(nil); got != "" {
		t.Errorf("FirstValue(nil) = %q, want empty", got)
	}
	fields := []Field{{Value: "  first  "}, {Value: "second"}}
	if got := FirstValue(fields); got != "first" {
		t.Errorf("FirstValue = %q, want %q", got, "first")
	}
}

func TestFirstValueWithLang(t *testing.T) {
	fields := []Field{{Value: " Titel ", Lang: "de"}, {Value: "Title", Lang: "en"}}
	value, lang := FirstValueWithLang(fields)
	if value != "Titel" || lang != "de" {
		t.Errorf("got (%q, %q), want (Titel, de)", value, lang)
	}

	value, lang = FirstValueWithLang(nil)
	if value != "" || lang != "" {
		t.Errorf("got (%q, %q), want empty pair", value, lang)
	}
}

func TestAllValues(t *testing.T) {
	fields := []Field{{Value: "a"}, {Value: "   "}, {Value: " b "}, {Value: ""}}
	if got := AllValues(fields); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("AllValues = %v, want [a b]", got)
	}
	if got := AllValues(nil); got != nil {
		t.Errorf("AllValues(nil) = %v, want nil", got)
	}
}
