package httpmodels

type HTTPMailTemplate struct {
	Alias string         `json:"alias"`
	Data  map[string]any `json:"data,omitempty"`
}

type HTTPMailRequest struct {
	From     string           `json:"from"`
	To       []string         `json:"to"`
	Subject  string           `json:"subject"`
	Template HTTPMailTemplate `json:"template"`
}

type HTTPMailResponse struct {
	Id string `json:"id"`
}
