package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

type orderItemPayload struct {
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	Name          string `json:"name"`
	CoverImage    string `json:"cover_image,omitempty"`
	Specification string `json:"specification,omitempty"`
}

type orderPayload struct {
	ReceiverName    string             `json:"receiver_name"`
	ReceiverPhone   string             `json:"receiver_phone"`
	ReceiverAddress string             `json:"receiver_address"`
	Items           []orderItemPayload `json:"items"`
	CouponID        *int64             `json:"coupon_id,omitempty"`
	Remark          string             `json:"remark,omitempty"`
	GoodsAmount     string             `json:"goods_amount"`
	Shipping        string             `json:"shipping"`
	MemberDiscount  string             `json:"member_discount"`
	CouponDiscount  string             `json:"coupon_discount"`
	DiscountAmount  string             `json:"discount_amount"`
	TotalAmount     string             `json:"total_amount"`
}

type orderCreated struct {
	ID      int64  `json:"id"`
	OrderNo string `json:"order_no"`
}

func newOrderPayload(sub *checkout.Submission) orderPayload {
	items := make([]orderItemPayload, len(sub.Items))
	for i, line := range sub.Items {
		items[i] = orderItemPayload{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Price:         money(line.Price),
			Name:          line.Name,
			CoverImage:    line.CoverImage,
			Specification: line.Specification,
		}
	}

	return orderPayload{
		ReceiverName:    sub.Address.ReceiverName,
		ReceiverPhone:   sub.Address.ReceiverPhone,
		ReceiverAddress: sub.Address.Full(),
		Items:           items,
		CouponID:        sub.CouponID,
		Remark:          sub.Remark,
		GoodsAmount:     money(sub.Draft.GoodsAmount),
		Shipping:        money(sub.Draft.ShippingFee),
		MemberDiscount:  money(sub.Draft.MemberDiscount),
		CouponDiscount:  money(sub.Draft.CouponDiscount),
		DiscountAmount:  money(sub.Draft.TotalDiscount),
		TotalAmount:     money(sub.Draft.Total),
	}
}

// SubmitOrder creates the order in the backend and returns its order number.
// The backend answers 201 with the bare order detail.
func (c *Client) SubmitOrder(ctx context.Context, token string, sub *checkout.Submission) (string, error) {
	created, err := do[orderCreated](ctx, c, http.MethodPost, "/orders/", newOrderPayload(sub), callOptions{
		token:          token,
		idempotencyKey: sub.IdempotencyKey,
	})
	if err != nil {
		return "", err
	}

	if created.OrderNo != "" {
		return created.OrderNo, nil
	}
	if created.ID > 0 {
		return strconv.FormatInt(created.ID, 10), nil
	}
	return "", ErrEmptyResponse
}

func money(d decimal.Decimal) string {
	return pricing.Format(d)
}
