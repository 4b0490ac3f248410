// Package graphql exposes read-only order and customer queries for admins.
//
//	{ orders(billNo: "ab12") { billNo mobile dueAmount } }
//	{ customer(mobile: "9990001111") { customerCode orders { billNo status } } }
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/services"
	gql "github.com/shashiranjanraj/tailorshop/pkg/graphql"
)

// NewSchema wires the query root to the order and customer services.
func NewSchema(customers *services.CustomerService, orders *services.OrderService) (graphql.Schema, error) {
	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"billNo":       orderField(graphql.String, func(o models.Order) interface{} { return o.BillNo }),
			"mobile":       orderField(graphql.String, func(o models.Order) interface{} { return o.Mobile }),
			"measurements": orderField(graphql.String, func(o models.Order) interface{} { return o.Measurements }),
			"description":  orderField(graphql.String, func(o models.Order) interface{} { return o.Description }),
			"totalAmount":  orderField(graphql.Float, func(o models.Order) interface{} { return o.TotalAmount }),
			"advance":      orderField(graphql.Float, func(o models.Order) interface{} { return o.Advance }),
			"dueAmount":    orderField(graphql.Float, func(o models.Order) interface{} { return o.DueAmount }),
			"deliveryDate": orderField(graphql.String, func(o models.Order) interface{} { return o.DeliveryDate }),
			"createdDate":  orderField(graphql.String, func(o models.Order) interface{} { return o.CreatedDate }),
			"status":       orderField(graphql.String, func(o models.Order) interface{} { return o.Status }),
		},
	})

	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"mobile":       customerField(graphql.String, func(c models.Customer) interface{} { return c.Mobile }),
			"customerCode": customerField(graphql.String, func(c models.Customer) interface{} { return c.CustomerCode }),
			"measurements": customerField(graphql.String, func(c models.Customer) interface{} { return c.Measurements }),
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, ok := asCustomer(p.Source)
					if !ok {
						return nil, nil
					}
					return orders.ByMobile(p.Context, c.Mobile)
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"orders": &graphql.Field{
				Type:        graphql.NewList(orderType),
				Description: "All orders, or those whose bill number contains billNo.",
				Args: graphql.FieldConfigArgument{
					"billNo": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					billNo, _ := p.Args["billNo"].(string)
					if billNo == "" {
						return orders.All(p.Context)
					}
					res, err := orders.Search(p.Context, billNo)
					if err != nil {
						return nil, err
					}
					return res.Orders, nil
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"billNo": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := orders.Get(p.Context, p.Args["billNo"].(string))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					return o, err
				},
			},
			"customers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return customers.List(p.Context)
				},
			},
			"customer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"mobile": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, err := customers.Get(p.Context, p.Args["mobile"].(string))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					return c, err
				},
			},
		},
	})

	return gql.NewSchema(query)
}

func orderField(t graphql.Output, get func(models.Order) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			o, ok := asOrder(p.Source)
			if !ok {
				return nil, nil
			}
			return get(o), nil
		},
	}
}

func customerField(t graphql.Output, get func(models.Customer) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			c, ok := asCustomer(p.Source)
			if !ok {
				return nil, nil
			}
			return get(c), nil
		},
	}
}

// Resolved lists hold values, single lookups hold pointers.
func asOrder(src interface{}) (models.Order, bool) {
	switch o := src.(type) {
	case models.Order:
		return o, true
	case *models.Order:
		if o != nil {
			return *o, true
		}
	}
	return models.Order{}, false
}

func asCustomer(src interface{}) (models.Customer, bool) {
	switch c := src.(type) {
	case models.Customer:
		return c, true
	case *models.Customer:
		if c != nil {
			return *c, true
		}
	}
	return models.Customer{}, false
}
