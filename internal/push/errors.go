package push

import (
	"errors"
	"fmt"
)

var errSubscriptionGone = errors.New("push subscription gone")

type errDeliveryStatus int

func (e errDeliveryStatus) Error() string {
	return fmt.Sprintf("push service returned status %d", int(e))
}
