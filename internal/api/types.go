package api

import "net/http"

// Doer 接口，*http.Client 和测试用的假传输都满足它
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type askRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
}

type fullPlanRequest struct {
	ProjectDescription string `json:"project_description"`
}

type scopeRequest struct {
	ProjectID    string `json:"project_id"`
	ProjectScope string `json:"project_scope"`
}

type riskRequest struct {
	ProjectID    string `json:"project_id"`
	WBSID        string `json:"wbs_id"`
	ProjectScope string `json:"project_scope"`
}
