package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"whitelight-store/apps/api/model"
)

func validOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName":  "Jane Buyer",
		"customerPhone": "+212600000000",
		"items": []map[string]interface{}{
			{"productId": "p1", "productName": "Test Shoe", "productPrice": 1000, "size": 42, "quantity": 2},
			{"productId": "p2", "productName": "Other Shoe", "productPrice": 250, "size": 40, "quantity": 3},
		},
	}
}

func TestCreateOrderTotals(t *testing.T) {
	env := newTestEnv(t)

	w, env2 := env.doJSON(t, http.MethodPost, "/api/orders", validOrderBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create order returned %d: %s", w.Code, w.Body.String())
	}

	var order model.Order
	if err := json.Unmarshal(env2.Data, &order); err != nil {
		t.Fatalf("decoding order: %v", err)
	}

	// total = Σ price*quantity，明细 subtotal 也由应用层算好
	if order.TotalAmount != 1000*2+250*3 {
		t.Fatalf("total mismatch: %v", order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	var sum float64
	for _, item := range order.Items {
		if item.Subtotal != item.ProductPrice*float64(item.Quantity) {
			t.Fatalf("item subtotal mismatch: %+v", item)
		}
		sum += item.Subtotal
	}
	if sum != order.TotalAmount {
		t.Fatalf("sum(items) %v != total %v", sum, order.TotalAmount)
	}

	if order.Status != model.OrderStatusPending {
		t.Fatalf("new order must be pending, got %s", order.Status)
	}
	// WL + 6位时间戳尾数 + 3位随机
	if !strings.HasPrefix(order.OrderNumber, "WL") || len(order.OrderNumber) != 11 {
		t.Fatalf("order number format mismatch: %s", order.OrderNumber)
	}

	// selectedSizes 没传时默认单尺码
	var items []model.OrderItem
	env.db.Where("order_id = ?", order.ID).Order("id").Find(&items)
	var sizes []int
	if err := json.Unmarshal([]byte(items[0].SelectedSizes), &sizes); err != nil {
		t.Fatalf("decoding selected sizes: %v", err)
	}
	if len(sizes) != 1 || sizes[0] != 42 {
		t.Fatalf("selected sizes default mismatch: %v", sizes)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []func(m map[string]interface{}){
		func(m map[string]interface{}) { delete(m, "customerName") },
		func(m map[string]interface{}) { delete(m, "customerPhone") },
		func(m map[string]interface{}) { m["items"] = []map[string]interface{}{} },
		func(m map[string]interface{}) {
			m["items"] = []map[string]interface{}{
				{"productId": "p1", "productName": "X", "productPrice": 10, "size": 60, "quantity": 1}, // 尺码超界
			}
		},
		func(m map[string]interface{}) {
			m["items"] = []map[string]interface{}{
				{"productId": "p1", "productName": "X", "productPrice": 10, "size": 42, "quantity": 11}, // 数量超界
			}
		},
	}

	for i, mutate := range cases {
		body := validOrderBody()
		mutate(body)
		w, _ := env.doJSON(t, http.MethodPost, "/api/orders", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d (%s)", i, w.Code, w.Body.String())
		}
	}

	var count int64
	env.db.Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected orders must not write rows, found %d", count)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)

	_, env2 := env.doJSON(t, http.MethodPost, "/api/orders", validOrderBody())
	var order model.Order
	json.Unmarshal(env2.Data, &order)

	// 六个合法值任意跳转都接受，包括 delivered 之后改 cancelled
	for _, status := range []string{"confirmed", "delivered", "cancelled", "processing"} {
		w, env3 := env.doJSON(t, http.MethodPut, "/api/orders/1/status", map[string]string{"status": status})
		if w.Code != http.StatusOK {
			t.Fatalf("status %s returned %d: %s", status, w.Code, w.Body.String())
		}
		var updated model.Order
		json.Unmarshal(env3.Data, &updated)
		if updated.Status != status {
			t.Fatalf("status not applied: got %s want %s", updated.Status, status)
		}
	}

	// 枚举外的值拒绝
	w, _ := env.doJSON(t, http.MethodPut, "/api/orders/1/status", map[string]string{"status": "teleported"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status must 400, got %d", w.Code)
	}

	// 不存在的订单
	w, _ = env.doJSON(t, http.MethodPut, "/api/orders/999/status", map[string]string{"status": "confirmed"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order must 404, got %d", w.Code)
	}
}

func TestListAndGetOrders(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/api/orders", validOrderBody())
	env.doJSON(t, http.MethodPost, "/api/orders", validOrderBody())
	env.doJSON(t, http.MethodPut, "/api/orders/2/status", map[string]string{"status": "confirmed"})

	w, env2 := env.doJSON(t, http.MethodGet, "/api/orders?status=confirmed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}
	var data struct {
		Orders []model.Order `json:"orders"`
		Total  int64         `json:"total"`
	}
	if err := json.Unmarshal(env2.Data, &data); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if data.Total != 1 || len(data.Orders) != 1 || data.Orders[0].Status != "confirmed" {
		t.Fatalf("status filter mismatch: %+v", data)
	}

	w, env3 := env.doJSON(t, http.MethodGet, "/api/orders/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d", w.Code)
	}
	var order model.Order
	if err := json.Unmarshal(env3.Data, &order); err != nil {
		t.Fatalf("decoding order: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items must be preloaded, got %d", len(order.Items))
	}

	w, _ = env.doJSON(t, http.MethodGet, "/api/orders/404", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order must 404, got %d", w.Code)
	}
}
