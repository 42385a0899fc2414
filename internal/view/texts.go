// Package view renders every user-facing text and keyboard of the bot.
// It is pure presentation: no storage, no Telegram I/O.
package view

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/m3rciful/aquabot/core/telegram/format"
	"github.com/m3rciful/aquabot/internal/models"
)

// md escapes customer-provided text before it is embedded into Markdown.
func md(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}

// Picker selects an index in [0, n). Injected so message pools are
// deterministic under test.
type Picker func(n int) int

// NewPicker returns a time-seeded Picker for production use.
func NewPicker() Picker {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(n int) int { return r.Intn(n) }
}

// confirmMessages are sent to the customer when an order is confirmed.
// One is picked at random per order.
var confirmMessages = []string{
	"✅ Your order is confirmed! The courier will be on the way shortly.",
	"✅ Order confirmed! We are already preparing your water.",
	"✅ All set, your order is confirmed. Expect delivery soon!",
	"✅ Confirmed! Fresh water is coming your way.",
}

// deliveryMessages are sent when the courier departs.
var deliveryMessages = []string{
	"🚚 The courier is on the way with your water!",
	"🚚 Your order has left the warehouse. See you soon!",
	"🚚 Water is en route. The courier will call on arrival.",
	"🚚 Delivery started, hang tight!",
}

// ConfirmMessage picks one confirmation phrase.
func ConfirmMessage(pick Picker) string {
	return confirmMessages[pick(len(confirmMessages))]
}

// DeliveryMessage picks one delivery phrase.
func DeliveryMessage(pick Picker) string {
	return deliveryMessages[pick(len(deliveryMessages))]
}

// WaterLabel is the display name of a water variant.
func WaterLabel(w models.WaterType) string {
	switch w {
	case models.WaterEffect:
		return "💧 Effect 19l"
	case models.WaterEffectCoffee:
		return "☕ Effect Coffee 19l"
	default:
		return string(w)
	}
}

// StatusLabel is the display name of an order status.
func StatusLabel(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "🕓 Pending"
	case models.StatusConfirmed:
		return "✅ Confirmed"
	case models.StatusDelivering:
		return "🚚 Delivering"
	case models.StatusCompleted:
		return "🏁 Completed"
	case models.StatusCancelled:
		return "❌ Cancelled"
	default:
		return string(s)
	}
}

// PaymentLabel is the display name of a payment method.
func PaymentLabel(method string) string {
	switch method {
	case PaymentCash:
		return "💵 Cash"
	case PaymentCard:
		return "💳 Card"
	default:
		return method
	}
}

// Payment method identifiers stored on orders.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// PaymentMethods lists the accepted methods in menu order.
var PaymentMethods = []string{PaymentCash, PaymentCard}

// Draft mirrors an order under composition for the summary screen.
type Draft struct {
	WaterType     models.WaterType
	Quantity      int
	BottlePrice   int
	PaymentMethod string
	Comment       string
	Address       string
}

// DraftSummary renders the confirmation screen of an order being composed.
func DraftSummary(d Draft) string {
	var b strings.Builder
	b.WriteString("*Your order:*\n\n")
	fmt.Fprintf(&b, "Water: %s\n", WaterLabel(d.WaterType))
	fmt.Fprintf(&b, "Quantity: %d\n", d.Quantity)
	fmt.Fprintf(&b, "Price: %d ₽ per bottle\n", d.BottlePrice)
	fmt.Fprintf(&b, "Total: *%d ₽*\n", d.BottlePrice*d.Quantity)
	fmt.Fprintf(&b, "Payment: %s\n", PaymentLabel(d.PaymentMethod))
	fmt.Fprintf(&b, "Address: %s\n", md(d.Address))
	if d.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", md(d.Comment))
	}
	b.WriteString("\nEverything correct?")
	return b.String()
}

// OrderLine renders one order for the history list.
func OrderLine(o models.Order) string {
	line := fmt.Sprintf("#%d  %s  %d × %s = %d ₽  %s",
		o.ID, o.CreatedAt.Format("02.01.2006"),
		o.Quantity, WaterLabel(o.WaterType), o.TotalPrice, StatusLabel(o.Status))
	if o.Rating != nil {
		line += fmt.Sprintf("  %s", strings.Repeat("⭐", *o.Rating))
	}
	return line
}

// OrderHistory renders the customer's recent orders.
func OrderHistory(orders []models.Order) string {
	if len(orders) == 0 {
		return "You have no orders yet. Tap \"💧 Order water\" to place the first one!"
	}
	var b strings.Builder
	b.WriteString("*Your recent orders:*\n\n")
	for _, o := range orders {
		b.WriteString(OrderLine(o))
		b.WriteString("\n")
	}
	return b.String()
}

// AdminOrderCard renders the full order details for administrators.
func AdminOrderCard(o *models.Order, owner *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Order #%d*  %s\n\n", o.ID, StatusLabel(o.Status))
	fmt.Fprintf(&b, "Customer: %s\n", md(owner.FullName))
	fmt.Fprintf(&b, "Phone: %s\n", owner.Phone)
	fmt.Fprintf(&b, "Address: %s\n", md(owner.Address))
	fmt.Fprintf(&b, "Water: %s\n", WaterLabel(o.WaterType))
	fmt.Fprintf(&b, "Quantity: %d\n", o.Quantity)
	fmt.Fprintf(&b, "Total: *%d ₽* (%d ₽/bottle)\n", o.TotalPrice, o.BottlePrice)
	fmt.Fprintf(&b, "Payment: %s\n", PaymentLabel(o.PaymentMethod))
	if comment := format.DerefString(o.Comment, ""); comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", md(comment))
	}
	fmt.Fprintf(&b, "Placed: %s\n", o.CreatedAt.Format("02.01.2006 15:04"))
	if o.ConfirmedAt != nil {
		fmt.Fprintf(&b, "Confirmed in %s\n", o.ConfirmedAt.Sub(o.CreatedAt).Round(time.Minute))
	}
	return b.String()
}

// NewOrderAlert renders the notification posted to admins and the orders channel.
func NewOrderAlert(o *models.Order, owner *models.User) string {
	return "🔔 *New order!*\n\n" + AdminOrderCard(o, owner)
}

// NegativeRatingAlert renders the admin alert for a low rating.
func NegativeRatingAlert(o *models.Order, owner *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Low rating on order #%d*\n\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", md(owner.FullName), owner.Phone)
	if rating := format.DerefInt(o.Rating, 0); rating > 0 {
		fmt.Fprintf(&b, "Rating: %s\n", strings.Repeat("⭐", rating))
	}
	if fb := format.DerefString(o.Feedback, ""); fb != "" {
		fmt.Fprintf(&b, "Feedback: %s\n", md(fb))
	}
	return b.String()
}

// RatePrompt thanks the customer for confirming delivery and asks for stars.
func RatePrompt(o *models.Order) string {
	return fmt.Sprintf("🏁 Order #%d delivered. Thank you!\n\nPlease rate the delivery:", o.ID)
}

// StatusChangeMessage renders the customer-facing message for a status change.
// Confirmed and delivering use the randomized pools.
func StatusChangeMessage(o *models.Order, pick Picker) string {
	switch o.Status {
	case models.StatusConfirmed:
		return fmt.Sprintf("%s\n\nOrder #%d, total %d ₽.", ConfirmMessage(pick), o.ID, o.TotalPrice)
	case models.StatusDelivering:
		return fmt.Sprintf("%s\n\nOrder #%d.", DeliveryMessage(pick), o.ID)
	case models.StatusCompleted:
		return fmt.Sprintf("🏁 Order #%d delivered. Thank you!", o.ID)
	case models.StatusCancelled:
		return fmt.Sprintf("❌ Order #%d was cancelled. Contact us if this is unexpected.", o.ID)
	default:
		return fmt.Sprintf("Order #%d is now %s.", o.ID, StatusLabel(o.Status))
	}
}

// Profile renders the customer's profile screen.
func Profile(u *models.User, price int) string {
	var b strings.Builder
	b.WriteString("*Your profile:*\n\n")
	fmt.Fprintf(&b, "Name: %s\n", md(u.FullName))
	fmt.Fprintf(&b, "Phone: %s\n", u.Phone)
	fmt.Fprintf(&b, "Address: %s\n", md(u.Address))
	fmt.Fprintf(&b, "Your price: %d ₽ per bottle\n", price)
	return b.String()
}

// Prices renders the price list for a customer (or a visitor, u == nil).
func Prices(u *models.User, defaultPrice int) string {
	var b strings.Builder
	b.WriteString("*Prices:*\n\n")
	for _, w := range models.WaterTypes {
		fmt.Fprintf(&b, "%s: %d ₽ per bottle\n", WaterLabel(w), defaultPrice)
	}
	if u != nil && u.CustomPrice != nil {
		fmt.Fprintf(&b, "\nYour personal price: *%d ₽* per bottle\n", *u.CustomPrice)
	}
	b.WriteString("\nDelivery is free from 2 bottles.")
	return b.String()
}

// UserLine renders one customer row for the admin list.
func UserLine(u models.User, defaultPrice int) string {
	price := defaultPrice
	if u.CustomPrice != nil {
		price = *u.CustomPrice
	}
	return fmt.Sprintf("#%d %s, %s, %d ₽", u.ID, u.FullName, u.Phone, price)
}

const (
	// WelcomeNew greets an unregistered visitor.
	WelcomeNew = "👋 Welcome to Effect water delivery!\n\nRegister to start ordering water to your door."
	// WelcomeBack greets a registered customer.
	WelcomeBack = "👋 Welcome back! What would you like to do?"

	// Help lists what the bot can do.
	Help = "I take water delivery orders.\n\n" +
		"💧 Order water: compose and place an order\n" +
		"📦 My orders: recent orders and their status\n" +
		"👤 Profile: your delivery details\n" +
		"💰 Prices: current price list\n" +
		"📞 Contacts: how to reach us\n\n" +
		"Send /cancel at any point to abort the current action."

	// Contacts is the static contact card.
	Contacts = "📞 *Contacts:*\n\n" +
		"Phone: +7 900 000-00-00\n" +
		"Working hours: Mon-Sat 9:00-19:00\n" +
		"Delivery: same day for orders before 15:00."

	// AskName opens registration.
	AskName = "Let's get you registered! What is your name?"
	// AskPhone asks for the contact number.
	AskPhone = "Your phone number? You can also share the contact with the button below."
	// AskAddress asks for the delivery address.
	AskAddress = "Delivery address? Street, building, entrance, floor."
	// Registered confirms a finished registration.
	Registered = "🎉 You are registered! Now you can order water."

	// EditHint explains the dot shortcut during profile editing.
	EditHint = "Send \".\" to keep the current value."

	// AskWater opens order composition.
	AskWater = "Which water would you like?"
	// AskQuantity asks for the bottle count.
	AskQuantity = "How many bottles?"
	// AskQuantityCustom asks for a typed bottle count.
	AskQuantityCustom = "Type the number of bottles (1 to 100)."
	// AskPayment asks for the payment method.
	AskPayment = "How will you pay?"
	// AskComment asks for an optional courier note.
	AskComment = "Any comment for the courier? Tap Skip if none."

	// OrderPlaced confirms placement to the customer.
	OrderPlaced = "✅ Order placed! We will confirm it shortly."
	// OrderAborted confirms the draft was thrown away.
	OrderAborted = "Order cancelled. Nothing was saved."

	// AskFeedback asks for text after a low rating.
	AskFeedback = "😔 Sorry to hear that. Please tell us what went wrong so we can fix it."
	// AskFeedbackOptional asks for optional praise after a good rating.
	AskFeedbackOptional = "Thank you! Add a comment or tap Skip."
	// FeedbackSaved thanks for the rating.
	FeedbackSaved = "🙏 Thank you for your feedback!"

	// NotRegistered nudges a visitor to register first.
	NotRegistered = "You are not registered yet. Tap \"📝 Register\" first."
	// Cancelled confirms an aborted dialogue.
	Cancelled = "Cancelled. Back to the menu."
	// Unknown is the fallback for unrecognized input.
	Unknown = "I did not understand that. Use the menu buttons or /help."
)
