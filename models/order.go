package models

import "github.com/rfielding/ctlcheck/kripke"

// Order builds a small Kripke model for a single order.
//
// States:
//
//	new:       New
//	accepted:  Accepted
//	delivered: Delivered (absorbing)
//	cancelled: Cancelled (absorbing)
//
// This is a "good" model where accepted orders always resolve.
func Order() *kripke.Model {
	b := newBuilder()
	b.state("new", nil)
	b.state("accepted", nil, "accepted")
	b.state("delivered", nil, "accepted", "delivered")
	b.state("cancelled", nil, "accepted", "cancelled")

	b.edge("new", "accepted")
	b.edge("accepted", "delivered", "cancelled")
	b.edge("delivered", "delivered")
	b.edge("cancelled", "cancelled")

	labels := kripke.Labels()
	m := kripke.NewModel("order", b.g)
	m.Description = "Order lifecycle: accepted orders are either delivered or cancelled."
	m.AddFormula(check("R1", "Every accepted order is eventually delivered or cancelled.",
		"AG(accepted -> AF(delivered | cancelled))", labels))
	m.AddFormula(check("R2", "No state is both delivered and cancelled.",
		"AG !(delivered & cancelled)", labels))
	m.AddFormula(check("R3", "Delivery is possible.", "EF delivered", labels))
	m.AddFormula(check("R4", "Cancellation is possible.", "EF cancelled", labels))
	return m
}
