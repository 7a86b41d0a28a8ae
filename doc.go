// Package sapbackend is the Sap Music Group publishing administration backend.
//
// Project layout:
//
//	cmd/server           HTTP API, realtime feed and maintenance commands
//	cmd/sapclient        command-line client built on the client core
//	internal/config      environment configuration
//	internal/database    gorm connection, migrations, seed data, redis
//	internal/models      persisted rows (snake_case wire shape)
//	internal/services    business operations and access policy
//	internal/handlers    gin handlers
//	internal/middleware  auth, CORS, i18n, audit logging, rate limiting
//	internal/router      route table
//	internal/gateway     HTTP/websocket client for the API
//	internal/casing      snake_case <-> camelCase key adapter
//	internal/appstate    client application-state store
//	internal/registration song registration wizard
//	internal/earnings    royalty and payout aggregation
//	internal/agreement   publishing agreement template rendering
package sapbackend
