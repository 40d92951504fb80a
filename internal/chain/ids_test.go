package chain

import "testing"

func TestNewContract(t *testing.T) {
	c := NewContract("0xdeadbeef")

	if c.Address != "0xdeadbeef" {
		t.Errorf("address = %s", c.Address)
	}
	if c.AcceptRequestFn != "0xdeadbeef::skillshare::accept_request" {
		t.Errorf("accept fn = %s", c.AcceptRequestFn)
	}
	if c.GlobalRequestsTag != "0xdeadbeef::skillshare::GlobalRequests" {
		t.Errorf("global requests tag = %s", c.GlobalRequestsTag)
	}
	if c.RegisterForCoinFn != "0xdeadbeef::skillshare::register_for_aptos_coin" {
		t.Errorf("coin fn = %s", c.RegisterForCoinFn)
	}
	if c.RequestReleaseFn != "0xdeadbeef::skillshare::teacher_request_release" {
		t.Errorf("release fn = %s", c.RequestReleaseFn)
	}
	if c.ConfirmCompleteFn != "0xdeadbeef::skillshare::learner_confirm_completion" {
		t.Errorf("confirm fn = %s", c.ConfirmCompleteFn)
	}
	// The coin store tag is framework-defined, not contract-parameterized.
	if c.AptosCoinStoreTag != "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>" {
		t.Errorf("coin store tag = %s", c.AptosCoinStoreTag)
	}
}
