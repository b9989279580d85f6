package main

// @title Inventory Reconciliation API
// @version 1.0
// @description Physical count sessions, adjustment tickets and the stock ledger of the garage workshop.

// @contact.name API Support
// @contact.url https://github.com/vegatran/GaraManager-sub003

// @license.name MIT

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Inventory Checks
// @tag.description Count sessions and counted items

// @tag.name Inventory Adjustments
// @tag.description Adjustment tickets, approval and comments

// @tag.name Stock Transactions
// @tag.description Stock ledger queries

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
