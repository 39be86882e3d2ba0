package k8s

import (
	"context"
	"sync"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	"github.com/opsfleet/process-supervisor/pkg/metrics"
	"github.com/opsfleet/process-supervisor/pkg/supervisor"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/watch"
)

// Reconciler is the orchestrator reconciler (I). It watches this
// supervisor's own pod, filtered by name, and drives the finalizer/drain/
// terminate state transitions described in the component design.
type Reconciler struct {
	params *Params
	sup    *supervisor.Supervisor
	mu     sync.Mutex
	stopCh chan struct{}
}

// NewReconciler builds a Reconciler bound to params and sup.
func NewReconciler(params *Params, sup *supervisor.Supervisor) *Reconciler {
	return &Reconciler{
		params: params,
		sup:    sup,
		stopCh: make(chan struct{}),
	}
}

// Start begins the watch-based reconcile loop in the background. The watch
// is restarted with a short backoff if the underlying stream ends (pod
// updates, expired watches, transient API errors).
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconcile loop to exit.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

func (r *Reconciler) run(ctx context.Context) {
	logger := log.WithComponent("reconciler")
	logger.Info().Str("pod", r.params.PodName).Msg("orchestrator reconciler started")

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := r.watchOnce(ctx); err != nil {
			logger.Warn().Err(err).Msg("reconcile watch ended, retrying after delay")
		}

		select {
		case <-time.After(10 * time.Second):
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) watchOnce(ctx context.Context) error {
	selector := fields.OneTermEqualSelector("metadata.name", r.params.PodName).String()

	w, err := r.params.Clientset.CoreV1().Pods(r.params.Namespace).Watch(ctx, metav1.ListOptions{
		FieldSelector: selector,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	for event := range w.ResultChan() {
		pod, ok := event.Object.(*corev1.Pod)
		if !ok {
			continue
		}
		if event.Type == watch.Deleted {
			continue
		}
		r.reconcile(ctx, pod)
	}
	return nil
}

// reconcile applies the guard-condition state transitions from the
// component design: add-finalizer, set-drain, set-terminate.
func (r *Reconciler) reconcile(ctx context.Context, pod *corev1.Pod) {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconcileCycleDuration)
		metrics.ReconcileCyclesTotal.Inc()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	logger := log.WithComponent("reconciler")

	if pod.DeletionTimestamp == nil && !hasFinalizer(pod, FinalizerName) {
		if err := addFinalizer(ctx, r.params, pod); err != nil {
			logger.Error().Err(err).Msg("failed to add finalizer")
			return
		}
		logger.Info().Msg("added finalizer to pod")
		return
	}

	if pod.DeletionTimestamp != nil && !isDrainAnnotated(pod) {
		if err := mergePatchAnnotation(ctx, r.params, pod.Name, annotationDrain, "true"); err != nil {
			logger.Error().Err(err).Msg("failed to add drain annotation")
			return
		}
		r.sup.Modes().SetDrain()
		metrics.DrainMode.Set(1)
		logger.Info().Msg("pod is being deleted, entered drain mode")
	}

	if isTerminateAnnotated(pod) && !r.sup.Modes().IsTerminate() {
		r.sup.Modes().SetTerminate()
		metrics.TerminateMode.Set(1)
		logger.Info().Msg("terminate annotation observed, entered terminate mode")
	}
}

func isDrainAnnotated(pod *corev1.Pod) bool {
	return pod.Annotations[annotationDrain] == "true"
}

func isTerminateAnnotated(pod *corev1.Pod) bool {
	return pod.Annotations[annotationTerminate] == "true"
}
