package models

// RequestOperationName names the operation reported by an OperationStatus
type RequestOperationName string

const (
	OperationDelete RequestOperationName = "DELETE"
)

// RequestOperationStatus is the outcome reported by an OperationStatus
type RequestOperationStatus string

const (
	OperationSuccess RequestOperationStatus = "SUCCESS"
	OperationError   RequestOperationStatus = "ERROR"
)

// OperationStatus is returned by endpoints that have no resource to echo back
type OperationStatus struct {
	OperationName   RequestOperationName   `json:"operationName"`
	OperationResult RequestOperationStatus `json:"operationResult"`
}

// FileUploadResponse carries the human readable outcome of an upload
type FileUploadResponse struct {
	Message string `json:"message"`
}
