package types

// AuthType tags the variant held by an Authorization
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "apikey"
)

// Authorization describes how the generated test authenticates.
// Only the fields belonging to Type are read.
type Authorization struct {
	Type     AuthType `json:"type" yaml:"type"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string   `json:"token,omitempty" yaml:"token,omitempty"`
	KeyName  string   `json:"keyName,omitempty" yaml:"keyName,omitempty"`
	KeyValue string   `json:"keyValue,omitempty" yaml:"keyValue,omitempty"`
}

// Kind returns the variant tag, treating a nil or empty authorization as none
func (a *Authorization) Kind() AuthType {
	if a == nil || a.Type == "" {
		return AuthNone
	}
	return a.Type
}

// RequestDescription represents one HTTP call to be rendered into a test case
type RequestDescription struct {
	Method                string         `json:"method" yaml:"method"`
	Endpoint              string         `json:"endpoint" yaml:"endpoint"`
	Authorization         *Authorization `json:"authorization,omitempty" yaml:"authorization,omitempty"`
	Headers               Pairs          `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams           Pairs          `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	RequestBody           string         `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	ExpectedStatus        int            `json:"expectedStatus" yaml:"expectedStatus"`
	ResponseTimeThreshold *int64         `json:"responseTimeThreshold,omitempty" yaml:"responseTimeThreshold,omitempty"`
	ValidateSchema        bool           `json:"validateSchema,omitempty" yaml:"validateSchema,omitempty"`
	SchemaFile            string         `json:"schemaFile,omitempty" yaml:"schemaFile,omitempty"`
}

// Normalize folds the falsy encodings a form front end sends for "unset" into
// their Go zero values.
func (d *RequestDescription) Normalize() {
	if d.ResponseTimeThreshold != nil && *d.ResponseTimeThreshold == 0 {
		d.ResponseTimeThreshold = nil
	}
	if d.Authorization != nil && d.Authorization.Kind() == AuthNone {
		d.Authorization = nil
	}
}

// GeneratedUnit is the rendered test class
type GeneratedUnit struct {
	ClassName  string `json:"className"`
	FileName   string `json:"fileName"`
	SourceText string `json:"javaCode"`
}

// Execution statuses reported by the test runner
const (
	StatusPassed             = "PASSED"
	StatusFailed             = "FAILED"
	StatusCompilationFailed  = "COMPILATION_FAILED"
	StatusTestMethodNotFound = "TEST_METHOD_NOT_FOUND"
	StatusError              = "ERROR"
)

// ExecutionResult represents the outcome of compiling and running a generated test
type ExecutionResult struct {
	Success           bool   `json:"success"`
	ClassName         string `json:"className,omitempty"`
	Status            string `json:"status,omitempty"`
	CompilationStatus string `json:"compilationStatus,omitempty"`
	CompilationErrors string `json:"compilationErrors,omitempty"`
	ExecutionTime     int64  `json:"executionTime"`
	Output            string `json:"output,omitempty"`
	ExecutionErrors   string `json:"executionErrors,omitempty"`
	TestsRun          int    `json:"testsRun"`
	Failures          int    `json:"failures"`
	Skips             int    `json:"skips"`
	Warnings          string `json:"warnings,omitempty"`
	Error             string `json:"error,omitempty"`
	RawOutput         string `json:"rawOutput,omitempty"`
	RawError          string `json:"rawError,omitempty"`
	Command           string `json:"command,omitempty"`
}
