package bot

import "github.com/m3rciful/aquabot/core/telegram/state"

// Conversation states. Each one maps to exactly one text handler.
const (
	stateRegName    state.State = "reg_name"
	stateRegPhone   state.State = "reg_phone"
	stateRegAddress state.State = "reg_address"

	stateEditName    state.State = "edit_name"
	stateEditPhone   state.State = "edit_phone"
	stateEditAddress state.State = "edit_address"

	stateOrderQty     state.State = "order_qty_custom"
	stateOrderComment state.State = "order_comment"

	stateRatingFeedback state.State = "rating_feedback"

	stateAdminPrice state.State = "admin_price"
)

// Temp data keys used while a conversation is in flight.
const (
	tmpRegName  = "reg_name"
	tmpRegPhone = "reg_phone"

	tmpEditName  = "edit_name"
	tmpEditPhone = "edit_phone"

	tmpOrderWater   = "order_water"
	tmpOrderQty     = "order_qty"
	tmpOrderPayment = "order_payment"
	tmpOrderComment = "order_comment"
	tmpOrderPrice   = "order_price"

	tmpRateOrder = "rate_order"
	tmpRateStars = "rate_stars"

	tmpPriceUser = "price_user"
)

func (b *Bot) registerStates() {
	b.fsm.Handle(stateRegName, b.fsmRegName)
	b.fsm.Handle(stateRegPhone, b.fsmRegPhone)
	b.fsm.Handle(stateRegAddress, b.fsmRegAddress)

	b.fsm.Handle(stateEditName, b.fsmEditName)
	b.fsm.Handle(stateEditPhone, b.fsmEditPhone)
	b.fsm.Handle(stateEditAddress, b.fsmEditAddress)

	b.fsm.Handle(stateOrderQty, b.fsmOrderQty)
	b.fsm.Handle(stateOrderComment, b.fsmOrderComment)

	b.fsm.Handle(stateRatingFeedback, b.fsmRatingFeedback)

	b.fsm.Handle(stateAdminPrice, b.fsmAdminPrice)
}
