package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	AccountService *AccountService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	accountService := InitAccountService(channel)
	if accountService == nil {
		panic("Failed to initialize Account produce service")
	}

	produceInstance = &Produce{
		AccountService: accountService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
