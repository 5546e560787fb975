//go:build swagger

// Package docs holds the general API annotations read by swag init.
package docs

// @title Wayfinder Navigation API
// @version 1.0
// @description Photo-guided indoor navigation: routes between named places in a building, returned as a sequence of photos.

// @host localhost:5001
// @BasePath /api

// @schemes http https
