package constants

const (
	WgExchange     = "wg_exchange"
	WgExchangeType = "direct"

	DeadLetterExchange = "wg_dead_letter"
)

const (
	UpdateResultsRoutingKey = "wg.update.results"
	AdDiscoveredRoutingKey  = "wg.ads.new"
	UpdateTasksRoutingKey   = "wg.update.tasks"
)

const (
	UpdateTasksQueue       = "wg_update_tasks_queue"
	UpdateTasksConsumerTag = "wg_update_tasks_consumer"
)
