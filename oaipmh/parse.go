package oaipmh

import (
	"encoding/xml"
	"strings"
)

// Response is the decoded OAI-PMH envelope. Only the verbs this service
// issues are modeled; other response sections are ignored by the decoder.
type Response struct {
	XMLName     xml.Name     `xml:"OAI-PMH"`
	Identify    *Identify    `xml:"Identify"`
	ListRecords *ListRecords `xml:"ListRecords"`
}

// Identify carries repository-level descriptors. Repeated elements
// (adminEmail, compression, description) decode to slices; the normalizer
// takes the first of each.
type Identify struct {
	RepositoryName    string        `xml:"repositoryName"`
	BaseURL           string        `xml:"baseURL"`
	ProtocolVersion   string        `xml:"protocolVersion"`
	AdminEmails       []string      `xml:"adminEmail"`
	EarliestDatestamp string        `xml:"earliestDatestamp"`
	DeletedRecord     string        `xml:"deletedRecord"`
	Granularity       string        `xml:"granularity"`
	Compressions      []string      `xml:"compression"`
	Descriptions      []Description `xml:"description"`
}

// Description keeps the raw inner XML of an Identify description block;
// its schema varies per repository and is passed through untyped.
type Description struct {
	Raw string `xml:",innerxml"`
}

// ListRecords holds one page of records plus the pagination cursor.
// A page with a single record element decodes to a one-element slice, so
// callers never need to distinguish single-record from multi-record pages.
type ListRecords struct {
	Records         []Record         `xml:"record"`
	ResumptionToken *ResumptionToken `xml:"resumptionToken"`
}

// ResumptionToken models every token shape repositories emit: a bare text
// node, a node with completeListSize/cursor attributes, or a namespaced
// element. The chardata field catches the value in all cases.
type ResumptionToken struct {
	Value            string `xml:",chardata"`
	CompleteListSize string `xml:"completeListSize,attr"`
	Cursor           string `xml:"cursor,attr"`
}

// Token returns the trimmed resumption token for the page, or "" when the
// page carries none. An unrecognized token shape yields "" rather than an
// error, which ends pagination.
func (lr *ListRecords) Token() string {
	if lr == nil || lr.ResumptionToken == nil {
		return ""
	}
	return strings.TrimSpace(lr.ResumptionToken.Value)
}

// Record is a single OAI-PMH record: header plus optional metadata.
// Deleted records have a header only.
type Record struct {
	Header   Header    `xml:"header"`
	Metadata *Metadata `xml:"metadata"`
}

// Header carries the OAI identifier and provenance fields.
type Header struct {
	Status     string   `xml:"status,attr"`
	Identifier string   `xml:"identifier"`
	Datestamp  string   `xml:"datestamp"`
	SetSpecs   []string `xml:"setSpec"`
}

// Metadata wraps the oai_dc payload.
type Metadata struct {
	DC *DublinCore `xml:"dc"`
}

// DublinCore holds the oai_dc element set. Every element decodes to a
// slice of Field regardless of how many values the source carries, which
// collapses the single-vs-list ambiguity at the parsing boundary.
type DublinCore struct {
	Titles       []Field `xml:"title"`
	Creators     []Field `xml:"creator"`
	Subjects     []Field `xml:"subject"`
	Descriptions []Field `xml:"description"`
	Publishers   []Field `xml:"publisher"`
	Dates        []Field `xml:"date"`
	Types        []Field `xml:"type"`
	Formats      []Field `xml:"format"`
	Identifiers  []Field `xml:"identifier"`
	Sources      []Field `xml:"source"`
	Languages    []Field `xml:"language"`
	Relations    []Field `xml:"relation"`
}

// Field is one Dublin-Core element value with its optional xml:lang tag.
// The empty xmlns in the attr tag matches the lang attribute in any
// namespace, including the reserved xml one.
type Field struct {
	Value string `xml:",chardata"`
	Lang  string `xml:"lang,attr"`
}

// Parse decodes a raw OAI-PMH response body.
func Parse(raw []byte) (*Response, error) {
	var resp Response
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FirstValue returns the trimmed first value of a Dublin-Core element, or
// "" when the element is absent. This is the single seam for the
// "single value vs list" ambiguity: single-value record fields always go
// through here.
func FirstValue(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(fields[0].Value)
}

// FirstValueWithLang returns the trimmed first value and its language tag.
// Only the first element is inspected for both, matching the source
// behavior for language-tagged fields.
func FirstValueWithLang(fields []Field) (value, lang string) {
	if len(fields) == 0 {
		return "", ""
	}
	return strings.TrimSpace(fields[0].Value), strings.TrimSpace(fields[0].Lang)
}

// AllValues returns every non-empty trimmed value in order. Multi-value
// record fields always coerce through here, even when the source had
// exactly one value.
func AllValues(fields []Field) []string {
	var out []string
	for _, f := range fields {
		v := strings.TrimSpace(f.Value)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
