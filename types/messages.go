package types

// OutboundMessage is implemented by every message handed to the delivery
// producer. The producer stamps the timestamp immediately before sending
// so all outgoing messages share one enrichment seam.
type OutboundMessage interface {
	StampTimestamp(ts string)
}

// IdentifyMessage is the wire shape delivered after the Identify phase.
// Field names are part of the downstream contract and must not change.
type IdentifyMessage struct {
	JournalKey   string          `json:"journalKey"`
	OaiURL       string          `json:"oaiUrl"`
	S3URL        *string         `json:"s3Url"`
	S3Key        *string         `json:"s3Key"`
	MessageType  string          `json:"messageType"`
	Success      bool            `json:"success"`
	ErrorCode    *string         `json:"errorCode"`
	ErrorMessage *string         `json:"errorMessage"`
	Timestamp    string          `json:"timestamp"`
	Data         *IdentifyRecord `json:"data,omitempty"`
}

func (m *IdentifyMessage) StampTimestamp(ts string) { m.Timestamp = ts }

// ArticleBatchMessage is the wire shape delivered once per batch of a
// ListRecords page.
type ArticleBatchMessage struct {
	JournalKey            string          `json:"journalKey"`
	OaiURL                string          `json:"oaiUrl"`
	S3URL                 *string         `json:"s3Url"`
	S3Key                 *string         `json:"s3Key"`
	MessageType           string          `json:"messageType"`
	PageNumber            int             `json:"pageNumber,omitempty"`
	BatchNumber           int             `json:"batchNumber,omitempty"`
	TotalBatches          int             `json:"totalBatches,omitempty"`
	ArticlesInBatch       int             `json:"articlesInBatch,omitempty"`
	TotalArticlesInPage   int             `json:"totalArticlesInPage,omitempty"`
	TotalRecordsProcessed int             `json:"totalRecordsProcessed,omitempty"`
	Success               bool            `json:"success"`
	ErrorCode             *string         `json:"errorCode"`
	ErrorMessage          *string         `json:"errorMessage"`
	Timestamp             string          `json:"timestamp"`
	Articles              []ArticleRecord `json:"articles,omitempty"`
}

func (m *ArticleBatchMessage) StampTimestamp(ts string) { m.Timestamp = ts }

// NewIdentifyFailure builds the failure shape for the Identify phase:
// s3Url and s3Key are explicit nulls, success is false.
func NewIdentifyFailure(journalKey, oaiURL, code, message string) *IdentifyMessage {
	return &IdentifyMessage{
		JournalKey:   journalKey,
		OaiURL:       oaiURL,
		MessageType:  "Identify",
		Success:      false,
		ErrorCode:    &code,
		ErrorMessage: &message,
	}
}

// NewListRecordsFailure builds the failure shape for the ListRecords phase.
func NewListRecordsFailure(journalKey, oaiURL, code, message string) *ArticleBatchMessage {
	return &ArticleBatchMessage{
		JournalKey:   journalKey,
		OaiURL:       oaiURL,
		MessageType:  "ArticleBatch",
		Success:      false,
		ErrorCode:    &code,
		ErrorMessage: &message,
	}
}
