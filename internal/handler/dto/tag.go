package dto

import "github.com/tagmark/tagmark/internal/model"

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagListResponse represents a list of tags.
type TagListResponse struct {
	Data []TagResponse `json:"data"`
}

// ToTagResponse converts a Tag model to TagResponse DTO.
func ToTagResponse(tag model.Tag) *TagResponse {
	return &TagResponse{
		ID:   tag.ID,
		Name: tag.Name,
	}
}

// ToTagListResponse converts a slice of Tag models to TagListResponse.
func ToTagListResponse(tags []model.Tag) *TagListResponse {
	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = *ToTagResponse(tag)
	}
	return &TagListResponse{Data: responses}
}
