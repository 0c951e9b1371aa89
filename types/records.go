package types

// HarvestRequest identifies one harvest of a single repository. It is
// created per incoming work item and owned by the orchestrator for the
// duration of that harvest.
type HarvestRequest struct {
	BaseURL    string `json:"baseUrl"`
	JournalKey string `json:"journalKey"`
}

// WorkItem is the raw trigger payload consumed from the work-item topic.
// Both fields are required; items missing either are skipped without retry.
type WorkItem struct {
	URL        string `json:"url"`
	JournalKey string `json:"journal_key"`
}

// IdentifyRecord is the flattened form of an OAI-PMH Identify response.
// Fields absent in the source XML are omitted from the JSON entirely;
// consumers rely on never seeing null placeholders.
type IdentifyRecord struct {
	Type              string `json:"type"`
	JournalKey        string `json:"journalKey"`
	CreatedAt         string `json:"createdAt"`
	RepositoryName    string `json:"repositoryName,omitempty"`
	BaseURL           string `json:"baseURL,omitempty"`
	ProtocolVersion   string `json:"protocolVersion,omitempty"`
	AdminEmail        string `json:"adminEmail,omitempty"`
	EarliestDatestamp string `json:"earliestDatestamp,omitempty"`
	DeletedRecord     string `json:"deletedRecord,omitempty"`
	Granularity       string `json:"granularity,omitempty"`
	Compression       string `json:"compression,omitempty"`
	Description       string `json:"description,omitempty"`
}

// ArticleRecord is one normalized Dublin-Core record from a ListRecords
// page. The same omission invariant applies: empty values and empty lists
// are dropped, never serialized as null or [].
//
// A record that fails normalization is replaced by a stub carrying
// RecordIndex, Error and Status "parse_error" so page record counts are
// preserved downstream.
type ArticleRecord struct {
	Type            string   `json:"type"`
	JournalKey      string   `json:"journalKey"`
	CreatedAt       string   `json:"createdAt"`
	Title           string   `json:"title,omitempty"`
	TitleLang       string   `json:"titleLang,omitempty"`
	Creator         string   `json:"creator,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	Description     string   `json:"description,omitempty"`
	DescriptionLang string   `json:"descriptionLang,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublisherLang   string   `json:"publisherLang,omitempty"`
	Date            string   `json:"date,omitempty"`
	Types           []string `json:"types,omitempty"`
	Format          string   `json:"format,omitempty"`
	Identifier      string   `json:"identifier,omitempty"`
	Sources         []string `json:"sources,omitempty"`
	Language        string   `json:"language,omitempty"`
	Relation        string   `json:"relation,omitempty"`
	Datestamp       string   `json:"datestamp,omitempty"`
	SetSpec         string   `json:"setSpec,omitempty"`
	RecordIndex     *int     `json:"recordIndex,omitempty"`
	Error           string   `json:"error,omitempty"`
	Status          string   `json:"status,omitempty"`
}

// Batch is a bounded, order-preserving slice of normalized records ready
// for delivery. Len(Records) is always between 1 and the assembler
// capacity; empty batches are never emitted.
type Batch struct {
	BatchNumber  int             `json:"batchNumber"`
	TotalBatches int             `json:"totalBatches"`
	Records      []ArticleRecord `json:"records"`
}

// HarvestResult summarizes one phase (Identify or ListRecords) of a
// harvest. A failed result carries zeroed counters: pages already handed
// to the page handler before the failure stay delivered, but they are not
// counted as completed work.
type HarvestResult struct {
	Success               bool   `json:"success"`
	PageCount             int    `json:"pageCount"`
	TotalRecordsProcessed int    `json:"totalRecordsProcessed"`
	ErrorCode             string `json:"errorCode,omitempty"`
	ErrorMessage          string `json:"errorMessage,omitempty"`
}
