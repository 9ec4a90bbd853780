package worker

import (
	"errors"

	"kvfabric/internal/dispatch"
	"kvfabric/internal/ioqueue"
	"kvfabric/internal/latency"
	"kvfabric/internal/logger"
	"kvfabric/internal/metrics"
	"kvfabric/internal/sga"
)

type opKind int

const (
	kindAccept opKind = iota
	kindClientPop
	kindPeerPop
	kindClientPush
)

type netOp struct {
	kind opKind
	qd   ioqueue.QD
}

// NetWorker is the network-category worker, id 0: it owns the listening
// socket, dispatches decoded client requests to store peers over shared
// channels, and ships their replies back out over the client socket.
type NetWorker struct {
	addr    string
	policy  dispatch.Policy
	peerQDs []ioqueue.QD
	lat     *latency.Recorder // nil when latency recording is disabled

	listenQD ioqueue.QD
	ops      map[ioqueue.Token]netOp

	// pushEntryID correlates a client-socket-push token with the latency
	// entry id opened when the request was first read, so RecordExit
	// fires exactly once the reply is fully written back.
	pushEntryID map[ioqueue.Token]int
}

// NewNetWorker returns a NetWorker that will listen on addr and dispatch
// across peerQDs -- the StoreWorker shared-queue descriptors this
// worker's own Service already holds, from RegisterPeers.
func NewNetWorker(addr string, policy dispatch.Policy, peerQDs []ioqueue.QD, lat *latency.Recorder) *NetWorker {
	return &NetWorker{
		addr:        addr,
		policy:      policy,
		peerQDs:     peerQDs,
		lat:         lat,
		ops:         map[ioqueue.Token]netOp{},
		pushEntryID: map[ioqueue.Token]int{},
	}
}

func (n *NetWorker) Setup(svc *ioqueue.Service) error {
	qd := svc.Socket()
	if err := svc.Bind(qd, n.addr); err != nil {
		return err
	}
	if err := svc.Listen(qd, 128); err != nil {
		return err
	}
	n.listenQD = qd

	tok, err := svc.Accept(qd)
	if err != nil {
		return err
	}
	n.ops[tok] = netOp{kind: kindAccept}

	for _, peerQD := range n.peerQDs {
		ptok, err := svc.Pop(peerQD)
		if err != nil {
			return err
		}
		n.ops[ptok] = netOp{kind: kindPeerPop, qd: peerQD}
	}

	logger.Info("netWorker: listening on %s with %d store peers", n.addr, len(n.peerQDs))
	return nil
}

func (n *NetWorker) Dequeue(svc *ioqueue.Service) (ioqueue.Result, error) {
	toks := make([]ioqueue.Token, 0, len(n.ops))
	for t := range n.ops {
		toks = append(toks, t)
	}
	res, _, ok := svc.WaitAny(toks)
	if !ok {
		metrics.WaitAnyEmpty()
		return ioqueue.Result{}, ioqueue.ErrAgain
	}
	return res, nil
}

func (n *NetWorker) Work(svc *ioqueue.Service, res ioqueue.Result) error {
	op, ok := n.ops[res.Token]
	if !ok {
		return nil
	}
	delete(n.ops, res.Token)

	switch op.kind {
	case kindAccept:
		return n.onAccept(svc, res)
	case kindClientPop:
		return n.onClientPop(svc, op.qd, res)
	case kindPeerPop:
		return n.onPeerPop(svc, op.qd, res)
	case kindClientPush:
		return n.onClientPushDone(svc, op.qd, res)
	}
	return nil
}

func (n *NetWorker) onAccept(svc *ioqueue.Service, res ioqueue.Result) error {
	if res.Err != nil {
		// ECONNABORTED or the listener was closed during shutdown; the
		// error table calls for dropping the token and carrying on, so
		// re-arming below (if the listener still exists) is the whole
		// recovery.
		logger.Warn("netWorker: accept error: %v", res.Err)
	} else {
		metrics.Accepted()
		tok, err := svc.Pop(res.AcceptedQD)
		if err != nil {
			logger.Error("netWorker: pop on newly accepted qd failed: %v", err)
		} else {
			n.ops[tok] = netOp{kind: kindClientPop, qd: res.AcceptedQD}
		}
	}

	tok, err := svc.Accept(n.listenQD)
	if err != nil {
		return err
	}
	n.ops[tok] = netOp{kind: kindAccept}
	return nil
}

func (n *NetWorker) onClientPop(svc *ioqueue.Service, clientQD ioqueue.QD, res ioqueue.Result) error {
	if res.Err != nil {
		if errors.Is(res.Err, ioqueue.ErrBadFrame) {
			metrics.FrameError()
		}
		logger.Warn("netWorker: closing client qd %d: %v", clientQD, res.Err)
		svc.Close(clientQD)
		return nil
	}

	entryID := -1
	if n.lat != nil {
		entryID = n.lat.RecordEntry()
	}

	peerIdx := n.policy.Next(len(n.peerQDs), flatten(res.SGA))
	peerQD := n.peerQDs[peerIdx]

	req := &KvRequest{ClientQD: clientQD, EntryID: entryID, Payload: res.SGA}
	pushTok, err := svc.Push(peerQD, req.toSGA())
	if err != nil {
		return err
	}
	// Shared-channel push completes in at most one poll once the slot is
	// free, so waiting here synchronously -- per the original -- never
	// stalls the worker beyond the peer draining its previous response.
	if _, err := svc.Wait(pushTok); err != nil {
		logger.Error("netWorker: push to peer %d failed: %v", peerQD, err)
	}
	metrics.RequestDispatched()

	tok, err := svc.Pop(clientQD)
	if err != nil {
		return nil
	}
	n.ops[tok] = netOp{kind: kindClientPop, qd: clientQD}
	return nil
}

func (n *NetWorker) onPeerPop(svc *ioqueue.Service, peerQD ioqueue.QD, res ioqueue.Result) error {
	if res.Err != nil {
		logger.Error("netWorker: peer pop error from qd %d: %v", peerQD, res.Err)
	} else {
		resp := decodeKvResponse(res.SGA)
		pushTok, err := svc.Push(resp.ClientQD, resp.Payload)
		if err != nil {
			logger.Warn("netWorker: client qd %d gone before reply could be sent: %v", resp.ClientQD, err)
		} else {
			n.ops[pushTok] = netOp{kind: kindClientPush, qd: resp.ClientQD}
			if n.lat != nil && resp.EntryID >= 0 {
				n.pushEntryID[pushTok] = resp.EntryID
			}
		}
	}

	tok, err := svc.Pop(peerQD)
	if err != nil {
		return err
	}
	n.ops[tok] = netOp{kind: kindPeerPop, qd: peerQD}
	return nil
}

func (n *NetWorker) onClientPushDone(svc *ioqueue.Service, clientQD ioqueue.QD, res ioqueue.Result) error {
	if entryID, ok := n.pushEntryID[res.Token]; ok {
		delete(n.pushEntryID, res.Token)
		if n.lat != nil {
			n.lat.RecordExit(entryID)
		}
	}
	if res.Err != nil {
		logger.Warn("netWorker: closing client qd %d after write error: %v", clientQD, res.Err)
		svc.Close(clientQD)
		return nil
	}
	metrics.RequestCompleted()
	return nil
}

func flatten(s *sga.SGA) []byte {
	if s == nil {
		return nil
	}
	if len(s.Segments) == 1 {
		return s.Segments[0].Buf
	}
	var buf []byte
	for _, seg := range s.Segments {
		buf = append(buf, seg.Buf...)
	}
	return buf
}
