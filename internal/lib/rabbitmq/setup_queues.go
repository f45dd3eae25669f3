package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации, с которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// UserRegisteredQueue — очередь приветственных уведомлений.
const UserRegisteredQueue = "notifications.user_registered"

// GetNotificationQueues возвращает очереди уведомлений портала для ключа routingKey.
func GetNotificationQueues(routingKey string) []QueueConfig {
	return []QueueConfig{
		{QueueName: UserRegisteredQueue, RoutingKey: routingKey},
	}
}
