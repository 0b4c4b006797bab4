package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/domain/user"
	"storefront/internal/paypal"
	"storefront/internal/util"
)

var (
	ErrPaymentMismatch = errors.New("error in paypal payment")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotCOD          = errors.New("order is not cash on delivery")
)

const MethodCashOnDelivery = "CashOnDelivery"

// StepError means checkout cannot continue until the client has visited
// Redirect.
type StepError struct {
	Message  string
	Redirect string
}

func (e *StepError) Error() string {
	return e.Message
}

type Store interface {
	Create(ctx context.Context, o order.Order, cartID uuid.UUID) (uuid.UUID, error)
	ByID(ctx context.Context, id uuid.UUID) (order.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]order.Order, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]order.Order, int, error)
	SetPaymentResult(ctx context.Context, id uuid.UUID, pr order.PaymentResult) error
	MarkPaid(ctx context.Context, id uuid.UUID, pr *order.PaymentResult) error
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

type Carts interface {
	GetMyCart(ctx context.Context, sessionCartID string, userID *uuid.UUID) (cart.Cart, error)
}

type Users interface {
	ByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type Payments interface {
	CreateOrder(ctx context.Context, price decimal.Decimal) (*paypal.Order, error)
	CapturePayment(ctx context.Context, orderID string) (*paypal.Capture, error)
}

type Receipts interface {
	SendPurchaseReceipt(ctx context.Context, o order.Order) error
}

// Viewer is who is asking for an order. Admins see every order.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

func (v Viewer) canSee(o order.Order) bool {
	return v.Admin || o.UserID == v.UserID
}

type Service struct {
	store    Store
	carts    Carts
	users    Users
	payments Payments
	receipts Receipts
	pageSize int

	mailing sync.WaitGroup
}

func NewService(store Store, carts Carts, users Users, payments Payments, receipts Receipts, pageSize int) *Service {
	return &Service{
		store:    store,
		carts:    carts,
		users:    users,
		payments: payments,
		receipts: receipts,
		pageSize: pageSize,
	}
}

// PlaceOrder turns the user's cart into an order. Missing checkout steps come
// back as *StepError.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, sessionCartID string) (uuid.UUID, error) {
	crt, err := s.carts.GetMyCart(ctx, sessionCartID, &userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load cart: %w", err)
	}
	if crt.IsEmpty() {
		return uuid.Nil, &StepError{Message: "your cart is empty", Redirect: "/cart"}
	}

	u, err := s.users.ByID(ctx, userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return uuid.Nil, ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load user: %w", err)
	}
	if u.Address == nil {
		return uuid.Nil, &StepError{Message: "no shipping address", Redirect: "/shipping-address"}
	}
	if u.PaymentMethod == "" {
		return uuid.Nil, &StepError{Message: "no payment method", Redirect: "/payment-method"}
	}

	o := order.Order{
		UserID:          userID,
		ShippingAddress: *u.Address,
		PaymentMethod:   u.PaymentMethod,
		ItemsPrice:      crt.ItemsPrice,
		ShippingPrice:   crt.ShippingPrice,
		TaxPrice:        crt.TaxPrice,
		TotalPrice:      crt.TotalPrice,
	}
	for _, it := range crt.Items {
		o.Items = append(o.Items, order.OrderItem{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     it.Price,
			Name:      it.Name,
			Slug:      it.Slug,
			Image:     it.Image,
		})
	}

	id, err := s.store.Create(ctx, o, crt.ID)
	if err != nil {
		return uuid.Nil, err
	}
	slog.InfoContext(ctx, "order placed", "order_id", id, "user_id", userID, "total", o.TotalPrice.String())
	return id, nil
}

// GetOrder hides orders the viewer may not see behind ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID, v Viewer) (order.Order, error) {
	o, err := s.store.ByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if !v.canSee(o) {
		return order.Order{}, ErrOrderNotFound
	}
	return o, nil
}

type Page struct {
	Orders     []order.Order `json:"orders"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

func (s *Service) GetMyOrders(ctx context.Context, userID uuid.UUID, page int) (Page, error) {
	page, offset := util.Page(page, s.pageSize)
	list, total, err := s.store.ListByUser(ctx, userID, s.pageSize, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{Orders: list, Page: page, TotalPages: util.TotalPages(total, s.pageSize)}, nil
}

func (s *Service) ListOrders(ctx context.Context, page int) (Page, error) {
	page, offset := util.Page(page, s.pageSize)
	list, total, err := s.store.ListAll(ctx, s.pageSize, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{Orders: list, Page: page, TotalPages: util.TotalPages(total, s.pageSize)}, nil
}

// CreatePayPalOrder opens a PayPal order for the order total and remembers its
// id so the capture can be matched later.
func (s *Service) CreatePayPalOrder(ctx context.Context, orderID uuid.UUID, v Viewer) (string, error) {
	o, err := s.GetOrder(ctx, orderID, v)
	if err != nil {
		return "", err
	}
	if o.IsPaid {
		return "", ErrAlreadyPaid
	}

	pp, err := s.payments.CreateOrder(ctx, o.TotalPrice)
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}

	pr := order.PaymentResult{ID: pp.ID, Status: "", EmailAddress: "", PricePaid: "0"}
	if err := s.store.SetPaymentResult(ctx, orderID, pr); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "paypal order created", "order_id", orderID, "paypal_id", pp.ID)
	return pp.ID, nil
}

// ApprovePayPalOrder captures the payment and marks the order paid when the
// capture matches the PayPal order created for it.
func (s *Service) ApprovePayPalOrder(ctx context.Context, orderID uuid.UUID, paypalOrderID string, v Viewer) error {
	o, err := s.GetOrder(ctx, orderID, v)
	if err != nil {
		return err
	}
	if o.IsPaid {
		return ErrAlreadyPaid
	}

	capture, err := s.payments.CapturePayment(ctx, paypalOrderID)
	if err != nil {
		return fmt.Errorf("paypal capture: %w", err)
	}
	if o.PaymentResult == nil || capture.ID != o.PaymentResult.ID || capture.Status != paypal.StatusCompleted {
		slog.WarnContext(ctx, "paypal capture mismatch",
			"order_id", orderID, "capture_id", capture.ID, "status", capture.Status)
		return ErrPaymentMismatch
	}

	return s.UpdateOrderToPaid(ctx, orderID, &order.PaymentResult{
		ID:           capture.ID,
		Status:       capture.Status,
		EmailAddress: capture.Payer.EmailAddress,
		PricePaid:    capture.AmountPaid(),
	})
}

// UpdateOrderToPaid marks the order paid and decrements stock, then mails the
// receipt in the background. A nil result keeps the stored payment result.
func (s *Service) UpdateOrderToPaid(ctx context.Context, orderID uuid.UUID, pr *order.PaymentResult) error {
	if err := s.store.MarkPaid(ctx, orderID, pr); err != nil {
		return err
	}
	slog.InfoContext(ctx, "order paid", "order_id", orderID)

	if s.receipts == nil {
		return nil
	}
	// the receipt outlives the request
	mailCtx := context.WithoutCancel(ctx)
	s.mailing.Add(1)
	go func() {
		defer s.mailing.Done()
		o, err := s.store.ByID(mailCtx, orderID)
		if err == nil {
			err = s.receipts.SendPurchaseReceipt(mailCtx, o)
		}
		if err != nil {
			slog.ErrorContext(mailCtx, "send purchase receipt", "order_id", orderID, "error", err)
		}
	}()
	return nil
}

// MarkCODPaid is the admin path for orders settled in cash on delivery. Other
// payment methods are only paid through their provider.
func (s *Service) MarkCODPaid(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.store.ByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.PaymentMethod != MethodCashOnDelivery {
		return ErrNotCOD
	}
	return s.UpdateOrderToPaid(ctx, orderID, nil)
}

func (s *Service) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	if err := s.store.MarkDelivered(ctx, orderID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "order delivered", "order_id", orderID)
	return nil
}

// Wait blocks until pending receipt mails are done.
func (s *Service) Wait() {
	s.mailing.Wait()
}
