package server

import (
	"github.com/rezonia/nfe-converter/internal/model"
)

// ParseResponse is the response for the parse endpoint
type ParseResponse struct {
	Invoice  *model.Invoice `json:"invoice"`
	Method   string         `json:"method"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// InfoResponse describes the document behind an invoice
type InfoResponse struct {
	AccessKey   string `json:"access_key"`
	Number      string `json:"number"`
	Version     string `json:"version"`
	Model       string `json:"model"`
	Environment string `json:"environment"`
	Authorized  bool   `json:"authorized"`
	Items       int    `json:"items"`
	Payments    int    `json:"payments"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind,omitempty"`
	Details  string   `json:"details,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
