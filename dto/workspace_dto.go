package dto

import (
	"time"

	"github.com/invoicebox/backend/models"
)

type Workspace struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	About     string    `json:"about"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func AdaptWorkspaceDto(workspace models.Workspace) Workspace {
	return Workspace{
		Id:        workspace.Id,
		Name:      workspace.Name,
		Email:     workspace.Email,
		About:     workspace.About,
		Picture:   workspace.Picture,
		CreatedAt: workspace.CreatedAt,
		UpdatedAt: workspace.UpdatedAt,
	}
}

type CreateWorkspaceBody struct {
	Name  string `json:"name" binding:"required,notblank,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	About string `json:"about" binding:"max=1000"`
}

func AdaptCreateWorkspaceInput(body CreateWorkspaceBody) models.CreateWorkspaceInput {
	return models.CreateWorkspaceInput{
		Name:  body.Name,
		Email: body.Email,
		About: body.About,
	}
}

type UpdateWorkspaceBody struct {
	Name  string `json:"name" binding:"omitempty,notblank,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	About string `json:"about" binding:"max=1000"`
}

func AdaptUpdateWorkspaceInput(body UpdateWorkspaceBody) models.UpdateWorkspaceInput {
	return models.UpdateWorkspaceInput{
		Name:  body.Name,
		Email: body.Email,
		About: body.About,
	}
}
