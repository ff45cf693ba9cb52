// Package alerts implements the rule evaluation engine and webhook delivery
// for churn alerting. Rules are evaluated against dataset summaries on every
// load and reload; webhooks are delivered to Teams, Slack, or generic HTTP
// targets.
package alerts
