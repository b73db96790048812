package dto

type CreateRequirementRequest struct {
	CountryID    uint     `json:"country_id" validate:"required"`
	DocumentType string   `json:"document_type" validate:"required,max=50"`
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description"`
	Required     *bool    `json:"required,omitempty"`
	MaxFileSize  int64    `json:"max_file_size" validate:"gte=0"`
	AllowedTypes []string `json:"allowed_types"`
	Order        int      `json:"order"`
	Active       *bool    `json:"active,omitempty"`
}

type UpdateRequirementRequest struct {
	DocumentType *string   `json:"document_type,omitempty" validate:"omitempty,max=50"`
	Title        *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string   `json:"description,omitempty"`
	Required     *bool     `json:"required,omitempty"`
	MaxFileSize  *int64    `json:"max_file_size,omitempty"`
	AllowedTypes *[]string `json:"allowed_types,omitempty"`
	Order        *int      `json:"order,omitempty"`
	Active       *bool     `json:"active,omitempty"`
}

type CreateCountryRequest struct {
	Title       string  `json:"title" validate:"required,max=150"`
	Slug        string  `json:"slug" validate:"omitempty,max=150"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}
