package entities

// SpecializationResponse is one entry of the public specialization list.
type SpecializationResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DoctorResponse is one entry of the public doctors-by-specialization
// list.
type DoctorResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Cabinet string `json:"cabinet,omitempty"`
}
