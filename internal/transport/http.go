package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/instantin-me/commerce-core/internal/drop"
	"github.com/instantin-me/commerce-core/internal/handler"
	"github.com/instantin-me/commerce-core/internal/order"
	"github.com/instantin-me/commerce-core/internal/product"
	"github.com/instantin-me/commerce-core/internal/raffle"
)

// NewRouter wires the HTTP surface over the commerce services.
func NewRouter(orderSvc order.Service, productSvc product.Service, dropSvc drop.Service, raffleSvc raffle.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	oh := handler.NewOrderHandler(orderSvc)
	ph := handler.NewProductHandler(productSvc)
	dh := handler.NewDropHandler(dropSvc)
	rh := handler.NewRaffleHandler(raffleSvc)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", oh.CreateOrder)
		r.Get("/{id}", oh.GetOrderByID)
		r.Post("/{id}/confirm-payment", oh.ConfirmPayment)
		r.Post("/{id}/ship", oh.MarkShipped)
		r.Post("/{id}/deliver", oh.MarkDelivered)
		r.Post("/{id}/cancel", oh.CancelOrder)
		r.Post("/{id}/refund", oh.RefundOrder)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", ph.CreateProduct)
		r.Get("/{id}", ph.GetProductByID)
		r.Post("/{id}/publish", ph.PublishProduct)
		r.Post("/{id}/unpublish", ph.UnpublishProduct)
	})

	r.Route("/drops", func(r chi.Router) {
		r.Post("/", dh.CreateDrop)
		r.Get("/{id}", dh.GetDropByID)
		r.Post("/{id}/split", dh.ComputeRevenueSplit)
		r.Post("/{id}/distribute", dh.DistributeRevenue)
		r.Post("/{id}/join", dh.JoinDrop)
		r.Post("/{id}/schedule", dh.ScheduleDrop)
		r.Post("/{id}/start", dh.StartDrop)
		r.Post("/{id}/pause", dh.PauseDrop)
		r.Post("/{id}/resume", dh.ResumeDrop)
		r.Post("/{id}/end", dh.EndDrop)
		r.Post("/{id}/cancel", dh.CancelDrop)
	})

	r.Route("/raffles", func(r chi.Router) {
		r.Post("/", rh.CreateRaffle)
		r.Get("/{id}", rh.GetRaffleByID)
		r.Post("/{id}/launch", rh.LaunchRaffle)
		r.Post("/{id}/pause", rh.PauseRaffle)
		r.Post("/{id}/resume", rh.ResumeRaffle)
		r.Post("/{id}/cancel", rh.CancelRaffle)
		r.Post("/{id}/entries", rh.EnterRaffle)
		r.Get("/{id}/prizes", rh.ComputePrizeBreakdown)
		r.Post("/{id}/draw", rh.DrawWinners)
		r.Post("/entries/{entryID}/bonus-tickets", rh.AddBonusTickets)
		r.Post("/entries/{entryID}/referral-tickets", rh.AddReferralTickets)
		r.Post("/entries/{entryID}/claim", rh.ClaimPrize)
		r.Post("/entries/{entryID}/disqualify", rh.DisqualifyEntry)
	})

	return r
}
