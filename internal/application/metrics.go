package application

import "expvar"

// Counters exposed on /api/debug/vars.
var (
	metricUsersRegistered = expvar.NewInt("users_registered")
	metricRecipesCreated  = expvar.NewInt("recipes_created")
	metricRecipesUpdated  = expvar.NewInt("recipes_updated")
	metricRecipesDeleted  = expvar.NewInt("recipes_deleted")
	metricMarksAdded      = expvar.NewMap("marks_added")
	metricConflicts       = expvar.NewInt("relation_conflicts")
	metricEmailsQueued    = expvar.NewInt("emails_queued")
	metricEmailFailures   = expvar.NewInt("email_enqueue_failures")
	metricCatalogCache    = expvar.NewMap("catalog_cache")
)
