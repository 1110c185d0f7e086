package books

// Envelope is the success body of every /api/books response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type DeletedBook struct {
	ID string `json:"id"`
}

func ok(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func okWithMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}
