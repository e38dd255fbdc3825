package handlers

// @title Member Info API
// @version 1.0
// @description CRUD over member records keyed by email, served from AWS Lambda behind API Gateway

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /

// @tag.name members
// @tag.description Member record operations
