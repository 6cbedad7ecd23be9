// Package mocks provides test doubles for the logiops client.
package mocks

import (
	"context"

	logiops "github.com/logiops360/logiops-cli/pkg/logiops"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// PredictETA provides a mock function with given fields: ctx, token, items
func (_m *MockClient) PredictETA(ctx context.Context, token string, items []logiops.ETAFeatures) (*logiops.ETAPredictResponse, error) {
	ret := _m.Called(ctx, token, items)

	if len(ret) == 0 {
		panic("no return value specified for PredictETA")
	}

	var r0 *logiops.ETAPredictResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []logiops.ETAFeatures) (*logiops.ETAPredictResponse, error)); ok {
		return rf(ctx, token, items)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, []logiops.ETAFeatures) *logiops.ETAPredictResponse); ok {
		r0 = rf(ctx, token, items)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.ETAPredictResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, []logiops.ETAFeatures) error); ok {
		r1 = rf(ctx, token, items)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PredictETAByID provides a mock function with given fields: ctx, token, shipmentID
func (_m *MockClient) PredictETAByID(ctx context.Context, token string, shipmentID string) (*logiops.ETAByIDResponse, error) {
	ret := _m.Called(ctx, token, shipmentID)

	if len(ret) == 0 {
		panic("no return value specified for PredictETAByID")
	}

	var r0 *logiops.ETAByIDResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (*logiops.ETAByIDResponse, error)); ok {
		return rf(ctx, token, shipmentID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *logiops.ETAByIDResponse); ok {
		r0 = rf(ctx, token, shipmentID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.ETAByIDResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, token, shipmentID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ETADistincts provides a mock function with given fields: ctx, token
func (_m *MockClient) ETADistincts(ctx context.Context, token string) (*logiops.ETADistincts, error) {
	ret := _m.Called(ctx, token)

	if len(ret) == 0 {
		panic("no return value specified for ETADistincts")
	}

	var r0 *logiops.ETADistincts
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*logiops.ETADistincts, error)); ok {
		return rf(ctx, token)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *logiops.ETADistincts); ok {
		r0 = rf(ctx, token)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.ETADistincts)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, token)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ETAShipmentIDs provides a mock function with given fields: ctx, token, limit
func (_m *MockClient) ETAShipmentIDs(ctx context.Context, token string, limit int) (*logiops.ShipmentIDsResponse, error) {
	ret := _m.Called(ctx, token, limit)

	if len(ret) == 0 {
		panic("no return value specified for ETAShipmentIDs")
	}

	var r0 *logiops.ShipmentIDsResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*logiops.ShipmentIDsResponse, error)); ok {
		return rf(ctx, token, limit)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *logiops.ShipmentIDsResponse); ok {
		r0 = rf(ctx, token, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.ShipmentIDsResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, token, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CarrierDistincts provides a mock function with given fields: ctx, token
func (_m *MockClient) CarrierDistincts(ctx context.Context, token string) (*logiops.CarrierDistincts, error) {
	ret := _m.Called(ctx, token)

	if len(ret) == 0 {
		panic("no return value specified for CarrierDistincts")
	}

	var r0 *logiops.CarrierDistincts
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*logiops.CarrierDistincts, error)); ok {
		return rf(ctx, token)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *logiops.CarrierDistincts); ok {
		r0 = rf(ctx, token)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.CarrierDistincts)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, token)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RecommendCarrier provides a mock function with given fields: ctx, token, req
func (_m *MockClient) RecommendCarrier(ctx context.Context, token string, req logiops.RecommendRequest) (*logiops.RecommendResponse, error) {
	ret := _m.Called(ctx, token, req)

	if len(ret) == 0 {
		panic("no return value specified for RecommendCarrier")
	}

	var r0 *logiops.RecommendResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, logiops.RecommendRequest) (*logiops.RecommendResponse, error)); ok {
		return rf(ctx, token, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, logiops.RecommendRequest) *logiops.RecommendResponse); ok {
		r0 = rf(ctx, token, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.RecommendResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, logiops.RecommendRequest) error); ok {
		r1 = rf(ctx, token, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DelayList provides a mock function with given fields: ctx, token, limit
func (_m *MockClient) DelayList(ctx context.Context, token string, limit int) (*logiops.DelayListResponse, error) {
	ret := _m.Called(ctx, token, limit)

	if len(ret) == 0 {
		panic("no return value specified for DelayList")
	}

	var r0 *logiops.DelayListResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*logiops.DelayListResponse, error)); ok {
		return rf(ctx, token, limit)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *logiops.DelayListResponse); ok {
		r0 = rf(ctx, token, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.DelayListResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, token, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DelayDetail provides a mock function with given fields: ctx, token, shipmentID
func (_m *MockClient) DelayDetail(ctx context.Context, token string, shipmentID string) (logiops.DelayDetail, error) {
	ret := _m.Called(ctx, token, shipmentID)

	if len(ret) == 0 {
		panic("no return value specified for DelayDetail")
	}

	var r0 logiops.DelayDetail
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (logiops.DelayDetail, error)); ok {
		return rf(ctx, token, shipmentID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) logiops.DelayDetail); ok {
		r0 = rf(ctx, token, shipmentID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(logiops.DelayDetail)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, token, shipmentID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AnomalyList provides a mock function with given fields: ctx, token, limit
func (_m *MockClient) AnomalyList(ctx context.Context, token string, limit int) (*logiops.AnomalyListResponse, error) {
	ret := _m.Called(ctx, token, limit)

	if len(ret) == 0 {
		panic("no return value specified for AnomalyList")
	}

	var r0 *logiops.AnomalyListResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int) (*logiops.AnomalyListResponse, error)); ok {
		return rf(ctx, token, limit)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int) *logiops.AnomalyListResponse); ok {
		r0 = rf(ctx, token, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.AnomalyListResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int) error); ok {
		r1 = rf(ctx, token, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AnomalyDetail provides a mock function with given fields: ctx, token, shipmentID, eventID
func (_m *MockClient) AnomalyDetail(ctx context.Context, token string, shipmentID string, eventID int64) (*logiops.AnomalyDetail, error) {
	ret := _m.Called(ctx, token, shipmentID, eventID)

	if len(ret) == 0 {
		panic("no return value specified for AnomalyDetail")
	}

	var r0 *logiops.AnomalyDetail
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, int64) (*logiops.AnomalyDetail, error)); ok {
		return rf(ctx, token, shipmentID, eventID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, int64) *logiops.AnomalyDetail); ok {
		r0 = rf(ctx, token, shipmentID, eventID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.AnomalyDetail)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, int64) error); ok {
		r1 = rf(ctx, token, shipmentID, eventID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// KPICounters provides a mock function with given fields: ctx, token
func (_m *MockClient) KPICounters(ctx context.Context, token string) (*logiops.KPICounters, error) {
	ret := _m.Called(ctx, token)

	if len(ret) == 0 {
		panic("no return value specified for KPICounters")
	}

	var r0 *logiops.KPICounters
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*logiops.KPICounters, error)); ok {
		return rf(ctx, token)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *logiops.KPICounters); ok {
		r0 = rf(ctx, token)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.KPICounters)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, token)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Login provides a mock function with given fields: ctx, creds
func (_m *MockClient) Login(ctx context.Context, creds logiops.Credentials) (*logiops.AuthResponse, error) {
	ret := _m.Called(ctx, creds)

	if len(ret) == 0 {
		panic("no return value specified for Login")
	}

	var r0 *logiops.AuthResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, logiops.Credentials) (*logiops.AuthResponse, error)); ok {
		return rf(ctx, creds)
	}
	if rf, ok := ret.Get(0).(func(context.Context, logiops.Credentials) *logiops.AuthResponse); ok {
		r0 = rf(ctx, creds)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.AuthResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, logiops.Credentials) error); ok {
		r1 = rf(ctx, creds)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Signup provides a mock function with given fields: ctx, req
func (_m *MockClient) Signup(ctx context.Context, req logiops.SignupRequest) (*logiops.AuthResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Signup")
	}

	var r0 *logiops.AuthResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, logiops.SignupRequest) (*logiops.AuthResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, logiops.SignupRequest) *logiops.AuthResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*logiops.AuthResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, logiops.SignupRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
