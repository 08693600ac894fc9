package agents

import "context"

// Registry names of capabilities routed here but fulfilled by other systems.
const (
	ExecutorLeadScan      = "lead-scan"
	ExecutorMarketingPost = "marketing-post"
	ExecutorCreativeAsset = "creative-asset"
	ExecutorSalesDemo     = "sales-demo"
)

// AcknowledgeExecutor accepts a request for a capability this deployment
// does not run locally and tells the operator where it was queued.
type AcknowledgeExecutor struct {
	name    string
	message string
}

// NewAcknowledgeExecutor creates a stub executor for an offloaded capability.
func NewAcknowledgeExecutor(name, message string) *AcknowledgeExecutor {
	return &AcknowledgeExecutor{name: name, message: message}
}

func (e *AcknowledgeExecutor) Name() string { return e.name }

func (e *AcknowledgeExecutor) Execute(_ context.Context, _ TaskRequest) (Result, error) {
	return Result{DisplayMessage: e.message}, nil
}

// RegisterOffloaded registers the acknowledgment stubs for capabilities
// handled outside the operational core.
func RegisterOffloaded(r *Registry) {
	r.Register(NewAcknowledgeExecutor(ExecutorLeadScan,
		"Lead scanning runs in the sales workspace; your request was forwarded."))
	r.Register(NewAcknowledgeExecutor(ExecutorMarketingPost,
		"Marketing posts are drafted in the content workspace; your request was forwarded."))
	r.Register(NewAcknowledgeExecutor(ExecutorCreativeAsset,
		"Creative assets are produced in the design workspace; your request was forwarded."))
	r.Register(NewAcknowledgeExecutor(ExecutorSalesDemo,
		"Demo scheduling is handled by the sales workspace; your request was forwarded."))
}
