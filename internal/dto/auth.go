package dto

import "github.com/pmsworkflow/pms-api/internal/models"

// LoginDTO is returned on successful login
type LoginDTO struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"data"`
}

// AccessTokenDTO is returned on refresh
type AccessTokenDTO struct {
	AccessToken string `json:"accessToken"`
}
