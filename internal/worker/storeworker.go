package worker

import (
	"kvfabric/internal/ioqueue"
	"kvfabric/internal/kvstore"
	"kvfabric/internal/logger"
	"kvfabric/internal/sga"
)

// StoreWorker is a shared-category worker, id > 0: it pops requests from
// the NetWorker, executes them against the KV store, and pushes replies
// back.
type StoreWorker struct {
	id       int
	netPeer  ioqueue.QD
	store    *kvstore.Store
	popToken ioqueue.Token
}

// NewStoreWorker returns a StoreWorker for the given shard id and KV
// store, talking to the NetWorker over netPeer -- the shared-queue
// descriptor this worker's own Service already holds, from
// RegisterPeers.
func NewStoreWorker(id int, netPeer ioqueue.QD, store *kvstore.Store) *StoreWorker {
	return &StoreWorker{id: id, netPeer: netPeer, store: store}
}

func (w *StoreWorker) Setup(svc *ioqueue.Service) error {
	tok, err := svc.Pop(w.netPeer)
	if err != nil {
		return err
	}
	w.popToken = tok
	logger.Info("storeWorker[%d]: ready", w.id)
	return nil
}

func (w *StoreWorker) Dequeue(svc *ioqueue.Service) (ioqueue.Result, error) {
	res, _, ok := svc.WaitAny([]ioqueue.Token{w.popToken})
	if !ok {
		return ioqueue.Result{}, ioqueue.ErrAgain
	}
	return res, nil
}

func (w *StoreWorker) Work(svc *ioqueue.Service, res ioqueue.Result) error {
	if res.Err != nil {
		logger.Error("storeWorker[%d]: pop error: %v", w.id, res.Err)
		return w.rearm(svc)
	}

	req := decodeKvRequest(res.SGA)
	command := string(flatten(req.Payload))

	replyText, err := w.store.Process(command)
	if err != nil {
		return err
	}

	resp := &KvResponse{
		ClientQD: req.ClientQD,
		EntryID:  req.EntryID,
		Payload:  sga.New([]byte(replyText)),
	}

	pushTok, err := svc.Push(w.netPeer, resp.toSGA())
	if err != nil {
		return err
	}
	if _, err := svc.Wait(pushTok); err != nil {
		logger.Error("storeWorker[%d]: push reply failed: %v", w.id, err)
	}

	return w.rearm(svc)
}

func (w *StoreWorker) rearm(svc *ioqueue.Service) error {
	tok, err := svc.Pop(w.netPeer)
	if err != nil {
		return err
	}
	w.popToken = tok
	return nil
}
