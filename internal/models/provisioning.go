package models

// StudentEntry is one student in a bulk provisioning request.
// Validation happens in the service layer so failures map to the
// response contract instead of gin binding errors.
type StudentEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddStudentsRequest is the bulk provisioning request body.
type AddStudentsRequest struct {
	ProductType string         `json:"productType"`
	ProductID   string         `json:"productId"`
	Students    []StudentEntry `json:"students"`
}

// StudentResult is the per-student outcome inside an accepted batch.
type StudentResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddStudentsResponse is the response for an accepted batch. Individual
// entries may still have failed; the batch itself was processed.
type AddStudentsResponse struct {
	Success bool            `json:"success"`
	Results []StudentResult `json:"results"`
}
