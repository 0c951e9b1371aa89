package normalize

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"
)

func pinNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() string { return "2024-05-01T12:00:00Z" }
	t.Cleanup(func() { now = orig })
}

func jsonKeys(t *testing.T, v interface{}) []string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const identifyMinimal = `<?xml version="1.0"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <Identify>
    <repositoryName>Test Repository</repositoryName>
  </Identify>
</OAI-PMH>`

const identifyFull = `<?xml version="1.0"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <Identify>
    <repositoryName>Journal Archive</repositoryName>
    <baseURL>http://repo.example.org/oai</baseURL>
    <protocolVersion>2.0</protocolVersion>
    <adminEmail>admin@example.org</adminEmail>
    <adminEmail>backup@example.org</adminEmail>
    <earliestDatestamp>2001-01-01</earliestDatestamp>
    <deletedRecord>persistent</deletedRecord>
    <granularity>YYYY-MM-DD</granularity>
    <compression>gzip</compression>
  </Identify>
</OAI-PMH>`

func TestIdentifyMinimalOmitsAbsentFields(t *testing.T) {
	pinNow(t)

	rec, err := Identify([]byte(identifyMinimal), "journal-a")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if rec.RepositoryName != "Test Repository" {
		t.Errorf("repositoryName = %q", rec.RepositoryName)
	}
	if rec.JournalKey != "journal-a" || rec.Type != "Identify" || rec.CreatedAt == "" {
		t.Errorf("provenance fields wrong: %+v", rec)
	}

	want := []string{"createdAt", "journalKey", "repositoryName", "type"}
	if got := jsonKeys(t, rec); !reflect.DeepEqual(got, want) {
		t.Errorf("serialized keys = %v, want %v", got, want)
	}
}

func TestIdentifyFullCopiesKnownFields(t *testing.T) {
	pinNow(t)

	rec, err := Identify([]byte(identifyFull), "journal-a")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if rec.BaseURL != "http://repo.example.org/oai" {
		t.Errorf("baseURL = %q", rec.BaseURL)
	}
	if rec.AdminEmail != "admin@example.org" {
		t.Errorf("adminEmail = %q, want first email only", rec.AdminEmail)
	}
	if rec.ProtocolVersion != "2.0" || rec.EarliestDatestamp != "2001-01-01" ||
		rec.DeletedRecord != "persistent" || rec.Granularity != "YYYY-MM-DD" || rec.Compression != "gzip" {
		t.Errorf("descriptor fields wrong: %+v", rec)
	}
}

func TestIdentifyMissingRootFails(t *testing.T) {
	_, err := Identify([]byte(`<OAI-PMH><ListRecords/></OAI-PMH>`), "journal-a")
	if err == nil {
		t.Fatal("expected error for missing Identify element")
	}
}

const listRecordsPage = `<?xml version="1.0"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <ListRecords>
    <record>
      <header>
        <identifier>oai:example:article-1</identifier>
        <datestamp>2024-03-10</datestamp>
        <setSpec>journal:abc</setSpec>
      </header>
      <metadata>
        <oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/"
                   xmlns:dc="http://purl.org/dc/elements/1.1/">
          <dc:title xml:lang="en">On Harvesting</dc:title>
          <dc:creator>Ada Author</dc:creator>
          <dc:creator>Ben Coauthor</dc:creator>
          <dc:subject>metadata</dc:subject>
          <dc:subject>protocols</dc:subject>
          <dc:subject>archives</dc:subject>
          <dc:description xml:lang="en">A study of harvesting.</dc:description>
          <dc:publisher>Example Press</dc:publisher>
          <dc:date>2024-03-01</dc:date>
          <dc:type>article</dc:type>
          <dc:type>peer-reviewed</dc:type>
          <dc:format>application/pdf</dc:format>
          <dc:identifier>https://example.org/articles/1</dc:identifier>
          <dc:source>Example Journal Vol 1</dc:source>
          <dc:language>en</dc:language>
          <dc:relation>https://example.org/issues/1</dc:relation>
        </oai_dc:dc>
      </metadata>
    </record>
  </ListRecords>
</OAI-PMH>`

func TestListRecordsFieldRules(t *testing.T) {
	pinNow(t)

	records, err := ListRecords([]byte(listRecordsPage), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]

	if rec.Creator != "Ada Author" {
		t.Errorf("creator = %q, want first creator only", rec.Creator)
	}
	if want := []string{"metadata", "protocols", "archives"}; !reflect.DeepEqual(rec.Subjects, want) {
		t.Errorf("subjects = %v, want %v", rec.Subjects, want)
	}
	if rec.Title != "On Harvesting" || rec.TitleLang != "en" {
		t.Errorf("title = (%q, %q)", rec.Title, rec.TitleLang)
	}
	if rec.Description != "A study of harvesting." || rec.DescriptionLang != "en" {
		t.Errorf("description = (%q, %q)", rec.Description, rec.DescriptionLang)
	}
	if rec.Publisher != "Example Press" || rec.PublisherLang != "" {
		t.Errorf("publisher = (%q, %q), lang sibling must be dropped when untagged", rec.Publisher, rec.PublisherLang)
	}
	if want := []string{"article", "peer-reviewed"}; !reflect.DeepEqual(rec.Types, want) {
		t.Errorf("types = %v, want %v", rec.Types, want)
	}
	if want := []string{"Example Journal Vol 1"}; !reflect.DeepEqual(rec.Sources, want) {
		t.Errorf("sources coerced to list even for one value, got %v, want %v", rec.Sources, want)
	}
	if rec.Identifier != "https://example.org/articles/1" {
		t.Errorf("identifier = %q", rec.Identifier)
	}
	if rec.Datestamp != "2024-03-10" || rec.SetSpec != "journal:abc" {
		t.Errorf("header passthrough wrong: datestamp=%q setSpec=%q", rec.Datestamp, rec.SetSpec)
	}
	if rec.Date != "2024-03-01" || rec.Format != "application/pdf" || rec.Language != "en" ||
		rec.Relation != "https://example.org/issues/1" {
		t.Errorf("single-value fields wrong: %+v", rec)
	}
}

func TestListRecordsNoTitleOmitsBothFields(t *testing.T) {
	pinNow(t)

	page := `<OAI-PMH><ListRecords><record>
		<header><identifier>oai:example:2</identifier></header>
		<metadata><dc><creator>Ada Author</creator></dc></metadata>
	</record></ListRecords></OAI-PMH>`

	records, err := ListRecords([]byte(page), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	keys := jsonKeys(t, records[0])
	for _, k := range keys {
		if k == "title" || k == "titleLang" {
			t.Errorf("record must contain neither title nor titleLang, got keys %v", keys)
		}
	}
}

func TestListRecordsIdentifierFallsBackToHeader(t *testing.T) {
	pinNow(t)

	page := `<OAI-PMH><ListRecords><record>
		<header><identifier>oai:example:fallback</identifier></header>
		<metadata><dc><title>No DC identifier</title></dc></metadata>
	</record></ListRecords></OAI-PMH>`

	records, err := ListRecords([]byte(page), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if records[0].Identifier != "oai:example:fallback" {
		t.Errorf("identifier = %q, want header fallback", records[0].Identifier)
	}
}

func TestListRecordsMissingRootFails(t *testing.T) {
	_, err := ListRecords([]byte(`<OAI-PMH><Identify/></OAI-PMH>`), "journal-a")
	if err == nil {
		t.Fatal("expected error for missing ListRecords element")
	}
}

func TestListRecordsEmptyElementYieldsNoRecords(t *testing.T) {
	records, err := ListRecords([]byte(`<OAI-PMH><ListRecords></ListRecords></OAI-PMH>`), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestListRecordsBrokenRecordBecomesStub(t *testing.T) {
	pinNow(t)

	// Second record has neither a header identifier nor metadata.
	page := `<OAI-PMH><ListRecords>
		<record><header><identifier>oai:example:ok</identifier></header></record>
		<record><header><datestamp>2024-01-01</datestamp></header></record>
	</ListRecords></OAI-PMH>`

	records, err := ListRecords([]byte(page), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count must be preserved, got %d", len(records))
	}

	stub := records[1]
	if stub.Status != "parse_error" {
		t.Errorf("status = %q, want parse_error", stub.Status)
	}
	if stub.Error == "" {
		t.Error("stub must carry the failure message")
	}
	if stub.RecordIndex == nil || *stub.RecordIndex != 1 {
		t.Errorf("recordIndex = %v, want 1", stub.RecordIndex)
	}
	if stub.JournalKey != "journal-a" || stub.Type != "ListRecords" {
		t.Errorf("stub provenance wrong: %+v", stub)
	}
}

func TestListRecordsDeletedRecordKeepsHeaderFields(t *testing.T) {
	pinNow(t)

	page := `<OAI-PMH><ListRecords><record>
		<header status="deleted">
			<identifier>oai:example:gone</identifier>
			<datestamp>2024-02-02</datestamp>
		</header>
	</record></ListRecords></OAI-PMH>`

	records, err := ListRecords([]byte(page), "journal-a")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	rec := records[0]
	if rec.Status == "parse_error" {
		t.Fatal("deleted record must not become a stub")
	}
	if rec.Identifier != "oai:example:gone" || rec.Datestamp != "2024-02-02" {
		t.Errorf("header fields wrong: %+v", rec)
	}
}
