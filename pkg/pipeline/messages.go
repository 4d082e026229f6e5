package pipeline

const (
	msgRustCompleted    = "Rust WASM build succeeded"
	msgCompileFailed    = "compilation failed"
	msgCompileTimeout   = "compilation timed out"
	msgBindgenFailed    = "binding generation failed"
	msgBindgenTimeout   = "binding generation timed out"
	msgArtifactsMissing = "output artifacts missing"
	msgInvalidManifest  = "invalid manifest"
	msgWorkspace        = "workspace error"
	msgToolStart        = "toolchain could not be started"
	msgUnexpected       = "unexpected error during build"
	msgCppNotImpl       = "C/C++ build is not implemented"
)

// step failure messages, keyed by step
var (
	failedMsg = map[string]string{
		StepCompile: msgCompileFailed,
		StepBindgen: msgBindgenFailed,
	}
	timeoutMsg = map[string]string{
		StepCompile: msgCompileTimeout,
		StepBindgen: msgBindgenTimeout,
	}
)
