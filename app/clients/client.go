package clients

import (
	"GoACE/app/cycle"
)

type Interface interface {
	Subscribe(*cycle.Controller)
}

type Client struct {
	controller *cycle.Controller
}
