package vault

import (
	"context"
	"time"

	"github.com/code-payments/vault-client/pkg/metrics"
)

const (
	metricsStructName = "vault.client"

	workflowEventName        = "VaultWorkflow"
	workflowDurationMetric   = "VaultWorkflowDuration"
	workflowFailureMetric    = "VaultWorkflowFailure"
	submissionEventName      = "VaultSubmission"
	submissionDurationMetric = "VaultSubmissionDuration"
)

func recordWorkflowEvent(ctx context.Context, workflow string, start time.Time, err error) {
	kvs := map[string]interface{}{
		"workflow": workflow,
		"success":  err == nil,
	}
	if err != nil {
		kvs["error"] = err.Error()
		metrics.RecordCount(ctx, workflowFailureMetric+"/"+workflow, 1)
	}

	metrics.RecordEvent(ctx, workflowEventName, kvs)
	metrics.RecordDuration(ctx, workflowDurationMetric+"/"+workflow, time.Since(start))
}

func recordSubmissionEvent(ctx context.Context, workflow string, start time.Time, signature string) {
	metrics.RecordEvent(ctx, submissionEventName, map[string]interface{}{
		"workflow":  workflow,
		"signature": signature,
	})
	metrics.RecordDuration(ctx, submissionDurationMetric+"/"+workflow, time.Since(start))
}
