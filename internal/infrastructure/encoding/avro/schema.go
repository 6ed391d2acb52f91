package avro

// OrderEventSchema describes events published after committed order changes.
// Money is carried as a decimal string; occurred_at is Unix milliseconds.
const OrderEventSchema = `{
	"type": "record",
	"name": "OrderEvent",
	"namespace": "com.orders",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "event_type", "type": "string"},
		{"name": "order_id", "type": "long"},
		{"name": "customer_id", "type": "long"},
		{"name": "status", "type": "string"},
		{"name": "previous_status", "type": ["null", "string"], "default": null},
		{"name": "total_amount", "type": "string"},
		{"name": "stock_restored", "type": "boolean", "default": false},
		{"name": "occurred_at", "type": "long"}
	]
}`
