// Package offload provides the roofline bottleneck model for LLM serving with
// an offloaded KV cache.
//
// # Reading Guide
//
// Start with these files:
//   - constants.go: RateConstants, the per-token rates both models consume
//   - prefill.go: TTFT speedup analysis (compute cost vs retrieval vs write-back)
//   - decode.go: TPOT slowdown analysis (decode step vs context retrieval)
//   - result.go: AnalysisResult, the record rendered by the CLI
//
// # Architecture
//
// The offload package holds the pure models; orchestration lives in
// sub-packages:
//   - offload/derive/: ConstantDeriver, reading benchmark latency logs
//   - offload/scenario/: ScenarioRunner, constant resolution and scenario fixtures
//
// Both models are total over their legal domain. Zero rates never fault:
// free retrieval (R = 0) or an empty baseline resolve to an unbounded Ratio
// (+Inf) instead of a division error. Out-of-domain inputs (alpha outside
// [0,1], negative or non-finite rates) are rejected with ErrInvalidAlpha or
// ErrInvalidRate.
//
// All times are per token in a single unit, microseconds by convention.
package offload
