package models

// ResultState is the overall outcome of a submission
type ResultState string

const (
	ResultPass ResultState = "pass"
	ResultFail ResultState = "fail"
)

// CaseState is the outcome of a single test case
type CaseState string

const (
	CasePass CaseState = "pass"
	CaseFail CaseState = "fail"
	CaseErr  CaseState = "err"
)

// SubmitRequest is the body of POST /submit
type SubmitRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Challenge string `json:"challenge"`
	Lang      string `json:"lang"`
}

// SubmitResult is returned by the golf API after running the hidden test cases
type SubmitResult struct {
	State   ResultState      `json:"state"`
	Results []TestCaseResult `json:"results"`
}

// TestCaseResult holds the diagnostics of one test case
type TestCaseResult struct {
	Name           string    `json:"name"`
	State          CaseState `json:"state"`
	Err            string    `json:"err,omitempty"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	ExpectedOutput string    `json:"expectedOutput,omitempty"`
}

// Passed returns true if the submission passed every test case
func (r *SubmitResult) Passed() bool {
	return r != nil && r.State == ResultPass
}

// Failures returns the test cases that did not pass, in order
func (r *SubmitResult) Failures() []TestCaseResult {
	if r == nil {
		return nil
	}
	var failed []TestCaseResult
	for _, tc := range r.Results {
		if tc.State != CasePass {
			failed = append(failed, tc)
		}
	}
	return failed
}

// Valid reports whether the state is one the API is allowed to send
func (s ResultState) Valid() bool {
	return s == ResultPass || s == ResultFail
}
