// Package normalize flattens parsed OAI-PMH responses into the record
// shapes delivered downstream. Absent fields are omitted from the output
// entirely; consumers never see null placeholders or empty lists.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"harvestbot/oaipmh"
	"harvestbot/types"
)

const (
	typeIdentify    = "Identify"
	typeListRecords = "ListRecords"

	statusParseError = "parse_error"
)

// now is swapped in tests to pin createdAt stamps.
var now = func() string { return time.Now().UTC().Format(time.RFC3339) }

// Identify flattens a raw Identify response into an IdentifyRecord. A
// response without an Identify root element is a protocol failure.
func Identify(rawXML []byte, journalKey string) (types.IdentifyRecord, error) {
	resp, err := oaipmh.Parse(rawXML)
	if err != nil {
		return types.IdentifyRecord{}, err
	}
	if resp.Identify == nil {
		return types.IdentifyRecord{}, &oaipmh.ProtocolError{
			Code: oaipmh.CodeMalformedResponse,
			Msg:  "response is missing the Identify element",
		}
	}

	id := resp.Identify
	rec := types.IdentifyRecord{
		Type:              typeIdentify,
		JournalKey:        journalKey,
		CreatedAt:         now(),
		RepositoryName:    strings.TrimSpace(id.RepositoryName),
		BaseURL:           strings.TrimSpace(id.BaseURL),
		ProtocolVersion:   strings.TrimSpace(id.ProtocolVersion),
		EarliestDatestamp: strings.TrimSpace(id.EarliestDatestamp),
		DeletedRecord:     strings.TrimSpace(id.DeletedRecord),
		Granularity:       strings.TrimSpace(id.Granularity),
	}
	if len(id.AdminEmails) > 0 {
		rec.AdminEmail = strings.TrimSpace(id.AdminEmails[0])
	}
	if len(id.Compressions) > 0 {
		rec.Compression = strings.TrimSpace(id.Compressions[0])
	}
	if len(id.Descriptions) > 0 {
		rec.Description = strings.TrimSpace(id.Descriptions[0].Raw)
	}
	return rec, nil
}

// ListRecords flattens every record on a raw ListRecords page. A response
// whose ListRecords element is structurally missing is a protocol failure;
// a present-but-empty element yields an empty slice.
//
// A failure on one record does not abort the page: the record is replaced
// by a parse_error stub so the page's record count is preserved and the
// failure stays visible downstream.
func ListRecords(rawXML []byte, journalKey string) ([]types.ArticleRecord, error) {
	resp, err := oaipmh.Parse(rawXML)
	if err != nil {
		return nil, err
	}
	if resp.ListRecords == nil {
		return nil, &oaipmh.ProtocolError{
			Code: oaipmh.CodeMalformedResponse,
			Msg:  "response is missing the ListRecords element",
		}
	}

	records := make([]types.ArticleRecord, 0, len(resp.ListRecords.Records))
	for i, raw := range resp.ListRecords.Records {
		rec, err := parseIndividualRecord(raw, journalKey)
		if err != nil {
			idx := i
			records = append(records, types.ArticleRecord{
				Type:        typeListRecords,
				JournalKey:  journalKey,
				CreatedAt:   now(),
				RecordIndex: &idx,
				Error:       err.Error(),
				Status:      statusParseError,
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseIndividualRecord applies the field extraction rules to one record:
// single-value fields take the first element, multi-value fields always
// coerce to a list, language-tagged fields inspect only the first element
// for both value and language, and the Dublin-Core identifier falls back
// to the OAI header identifier.
func parseIndividualRecord(raw oaipmh.Record, journalKey string) (types.ArticleRecord, error) {
	headerID := strings.TrimSpace(raw.Header.Identifier)
	if headerID == "" && raw.Metadata == nil {
		return types.ArticleRecord{}, fmt.Errorf("record has neither a header identifier nor metadata")
	}

	rec := types.ArticleRecord{
		Type:       typeListRecords,
		JournalKey: journalKey,
		CreatedAt:  now(),
		Datestamp:  strings.TrimSpace(raw.Header.Datestamp),
	}
	if len(raw.Header.SetSpecs) > 0 {
		rec.SetSpec = strings.TrimSpace(raw.Header.SetSpecs[0])
	}

	var dc *oaipmh.DublinCore
	if raw.Metadata != nil {
		dc = raw.Metadata.DC
	}
	if dc != nil {
		rec.Title, rec.TitleLang = oaipmh.FirstValueWithLang(dc.Titles)
		rec.Description, rec.DescriptionLang = oaipmh.FirstValueWithLang(dc.Descriptions)
		rec.Publisher, rec.PublisherLang = oaipmh.FirstValueWithLang(dc.Publishers)

		rec.Creator = oaipmh.FirstValue(dc.Creators)
		rec.Date = oaipmh.FirstValue(dc.Dates)
		rec.Format = oaipmh.FirstValue(dc.Formats)
		rec.Language = oaipmh.FirstValue(dc.Languages)
		rec.Relation = oaipmh.FirstValue(dc.Relations)

		rec.Subjects = oaipmh.AllValues(dc.Subjects)
		rec.Types = oaipmh.AllValues(dc.Types)
		rec.Sources = oaipmh.AllValues(dc.Sources)

		rec.Identifier = oaipmh.FirstValue(dc.Identifiers)
	}

	// A record value without a language keeps the value and drops only the
	// *_lang sibling; a missing value drops both.
	if rec.Title == "" {
		rec.TitleLang = ""
	}
	if rec.Description == "" {
		rec.DescriptionLang = ""
	}
	if rec.Publisher == "" {
		rec.PublisherLang = ""
	}

	if rec.Identifier == "" {
		rec.Identifier = headerID
	}
	return rec, nil
}
