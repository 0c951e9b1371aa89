// Package orchestrator wires the harvest client to the storage and
// delivery collaborators for one work item at a time.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"harvestbot/batch"
	"harvestbot/normalize"
	"harvestbot/oaipmh"
	"harvestbot/storage"
	"harvestbot/types"
)

// RawStore persists raw harvested XML.
type RawStore interface {
	SaveRawXML(ctx context.Context, content, label, sourceURL string) (storage.StoredObject, error)
}

// MessageSender delivers an outbound message and returns an opaque
// delivery id.
type MessageSender interface {
	Send(key string, msg types.OutboundMessage) (string, error)
}

// HarvestClient drives the OAI-PMH verbs. Satisfied by *oaipmh.Client.
type HarvestClient interface {
	Identify(ctx context.Context, baseURL string) (string, error)
	ListRecords(ctx context.Context, baseURL string, onPage oaipmh.PageHandler) types.HarvestResult
}

// Orchestrator runs both harvest phases for incoming work items.
// Independent work items share no state, so separate orchestrator calls
// may run concurrently.
type Orchestrator struct {
	client        HarvestClient
	store         RawStore
	sender        MessageSender
	logger        *log.Logger
	batchCapacity int
}

// Config assembles an orchestrator. BatchCapacity defaults to
// batch.DefaultCapacity; Logger defaults to the standard logger.
type Config struct {
	Client        HarvestClient
	Store         RawStore
	Sender        MessageSender
	Logger        *log.Logger
	BatchCapacity int
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:        cfg.Client,
		store:         cfg.Store,
		sender:        cfg.Sender,
		logger:        cfg.Logger,
		batchCapacity: cfg.BatchCapacity,
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.batchCapacity <= 0 {
		o.batchCapacity = batch.DefaultCapacity
	}
	return o
}

// HandleWorkItem runs one full harvest: Identify phase, then ListRecords
// phase. Phase failures are caught here and reported downstream as
// structured failure messages; only a failure to deliver that report
// propagates, which leaves the work item unmarked for external retry.
func (o *Orchestrator) HandleWorkItem(ctx context.Context, item *types.WorkItem) error {
	req := types.HarvestRequest{BaseURL: item.URL, JournalKey: item.JournalKey}
	o.logger.Printf("Starting harvest for journal %s (%s)", req.JournalKey, req.BaseURL)

	if err := o.runIdentify(ctx, req); err != nil {
		return err
	}
	return o.runListRecords(ctx, req)
}

// runIdentify fetches, stores, normalizes and delivers the repository's
// Identify response. Any failure in the chain, including the storage and
// delivery collaborators, is fatal for this phase.
func (o *Orchestrator) runIdentify(ctx context.Context, req types.HarvestRequest) error {
	rawXML, err := o.client.Identify(ctx, req.BaseURL)
	if err != nil {
		return o.reportFailure(req, types.NewIdentifyFailure(req.JournalKey, req.BaseURL, oaipmh.Classify(err), err.Error()))
	}

	obj, err := o.store.SaveRawXML(ctx, rawXML, req.JournalKey+"/identify", req.BaseURL)
	if err != nil {
		return o.reportFailure(req, types.NewIdentifyFailure(req.JournalKey, req.BaseURL, oaipmh.Classify(err), err.Error()))
	}

	record, err := normalize.Identify([]byte(rawXML), req.JournalKey)
	if err != nil {
		return o.reportFailure(req, types.NewIdentifyFailure(req.JournalKey, req.BaseURL, oaipmh.Classify(err), err.Error()))
	}

	msg := &types.IdentifyMessage{
		JournalKey:  req.JournalKey,
		OaiURL:      req.BaseURL,
		S3URL:       &obj.URL,
		S3Key:       &obj.Key,
		MessageType: "Identify",
		Success:     true,
		Data:        &record,
	}
	if _, err := o.sender.Send(req.JournalKey, msg); err != nil {
		return fmt.Errorf("failed to deliver Identify message for %s: %w", req.JournalKey, err)
	}

	o.logger.Printf("Identify phase complete for %s (raw XML at %s)", req.JournalKey, obj.URL)
	return nil
}

// runListRecords drives pagination and delivers one ArticleBatch message
// per assembled batch of each page.
func (o *Orchestrator) runListRecords(ctx context.Context, req types.HarvestRequest) error {
	result := o.client.ListRecords(ctx, req.BaseURL, o.pageHandler(ctx, req))
	if !result.Success {
		return o.reportFailure(req, types.NewListRecordsFailure(req.JournalKey, req.BaseURL, result.ErrorCode, result.ErrorMessage))
	}

	o.logger.Printf("ListRecords phase complete for %s: %d page(s), %d record(s)",
		req.JournalKey, result.PageCount, result.TotalRecordsProcessed)
	return nil
}

// pageHandler returns the per-page callback for one harvest. Storage and
// normalization failures abort the whole pagination loop; a batch-send
// failure is logged and the remaining batches of the page still go out.
// That asymmetry is deliberate: a page that cannot be persisted or parsed
// is unrecoverable, while a single delivery hiccup should not discard the
// rest of an already-harvested page.
func (o *Orchestrator) pageHandler(ctx context.Context, req types.HarvestRequest) oaipmh.PageHandler {
	return func(rawXML string, pageNumber, recordsInPage, totalRecordsProcessed int) error {
		label := fmt.Sprintf("%s/page-%04d", req.JournalKey, pageNumber)
		obj, err := o.store.SaveRawXML(ctx, rawXML, label, req.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to store page %d: %w", pageNumber, err)
		}

		records, err := normalize.ListRecords([]byte(rawXML), req.JournalKey)
		if err != nil {
			return fmt.Errorf("failed to normalize page %d: %w", pageNumber, err)
		}

		for _, b := range batch.Assemble(records, o.batchCapacity) {
			msg := &types.ArticleBatchMessage{
				JournalKey:            req.JournalKey,
				OaiURL:                req.BaseURL,
				S3URL:                 &obj.URL,
				S3Key:                 &obj.Key,
				MessageType:           "ArticleBatch",
				PageNumber:            pageNumber,
				BatchNumber:           b.BatchNumber,
				TotalBatches:          b.TotalBatches,
				ArticlesInBatch:       len(b.Records),
				TotalArticlesInPage:   len(records),
				TotalRecordsProcessed: totalRecordsProcessed,
				Success:               true,
				Articles:              b.Records,
			}
			if _, err := o.sender.Send(req.JournalKey, msg); err != nil {
				o.logger.Printf("Failed to deliver batch %d/%d for %s page %d: %v",
					b.BatchNumber, b.TotalBatches, req.JournalKey, pageNumber, err)
			}
		}

		o.logger.Printf("Processed page %d for %s: %d record(s), raw XML at %s",
			pageNumber, req.JournalKey, recordsInPage, obj.URL)
		return nil
	}
}

// reportFailure delivers a structured failure message for a phase. The
// phase error itself is absorbed; only a delivery failure of the report
// propagates to the caller.
func (o *Orchestrator) reportFailure(req types.HarvestRequest, msg types.OutboundMessage) error {
	o.logger.Printf("Harvest phase failed for %s (%s)", req.JournalKey, req.BaseURL)
	if _, err := o.sender.Send(req.JournalKey, msg); err != nil {
		return fmt.Errorf("failed to deliver failure message for %s: %w", req.JournalKey, err)
	}
	return nil
}
