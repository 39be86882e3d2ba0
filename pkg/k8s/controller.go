package k8s

import (
	"context"
	"os"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
)

// ControllerParams bootstraps the companion fleet controller: its own
// namespace and a clientset. Unlike Params, it has no single pod name — it
// watches every pod labelled supervisor=true.
type ControllerParams struct {
	Namespace string
	Clientset kubernetes.Interface
}

// BootstrapController resolves ControllerParams for in-cluster operation,
// reusing the same namespace-file/in-cluster-config bootstrap as Bootstrap.
func BootstrapController() (*ControllerParams, bool) {
	p, ok := Bootstrap()
	if !ok {
		return nil, false
	}
	return &ControllerParams{Namespace: p.Namespace, Clientset: p.Clientset}, true
}

// Controller watches all supervisor pods fleet-wide, adds their finalizer,
// propagates deletion to the drain annotation, and — on its own
// terminate-all trigger — sweeps terminate=true onto every supervisor pod.
// Its reconciliation is shape-identical to Reconciler but broader in scope.
type Controller struct {
	params *ControllerParams
	exit   func(code int)
}

// NewController builds a Controller bound to params.
func NewController(params *ControllerParams) *Controller {
	return &Controller{params: params, exit: os.Exit}
}

// Run drives the controller loop forever: check for a pending terminate-all
// sweep, then watch supervisor pods and reconcile each event. If the watch
// ends, it is restarted after a short delay — this resilience pattern keeps
// the controller alive across transient API-server hiccups.
func (c *Controller) Run(ctx context.Context) {
	logger := log.WithComponent("controller")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.checkTerminateAnnotation(ctx) {
			logger.Info().Msg("terminate-all requested, sweeping supervisor pods")
			c.terminateSupervisors(ctx)
			logger.Info().Msg("termination sweep complete, exiting to drop the terminate-all trigger")
			c.exit(1)
			return
		}

		if err := c.watchOnce(ctx); err != nil {
			logger.Warn().Err(err).Msg("controller watch ended, retrying after delay")
		}

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

// checkTerminateAnnotation reports whether this controller's own pod
// carries a terminate-all=true annotation.
func (c *Controller) checkTerminateAnnotation(ctx context.Context) bool {
	pods, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: "controller=true",
	})
	if err != nil || len(pods.Items) == 0 {
		return false
	}
	return pods.Items[0].Annotations["terminate-all"] == "true"
}

// terminateSupervisors repeatedly lists every supervisor=true pod and
// patches terminate=true onto it, until none remain unmarked.
func (c *Controller) terminateSupervisors(ctx context.Context) {
	logger := log.WithComponent("controller")
	patch := []byte(`{"metadata":{"annotations":{"terminate":"true"}}}`)

	for {
		pods, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).List(ctx, metav1.ListOptions{
			LabelSelector: labelSupervisor,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to list supervisor pods")
			return
		}
		if len(pods.Items) == 0 {
			return
		}

		unmarked := 0
		for _, pod := range pods.Items {
			if pod.Annotations["terminate"] == "true" {
				continue
			}
			unmarked++
			if _, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).Patch(
				ctx, pod.Name, types.MergePatchType, patch, metav1.PatchOptions{},
			); err != nil {
				logger.Error().Err(err).Str("pod", pod.Name).Msg("failed to mark pod for termination")
				continue
			}
			logger.Info().Str("pod", pod.Name).Msg("pod marked for termination")
		}
		if unmarked == 0 {
			return
		}
	}
}

func (c *Controller) watchOnce(ctx context.Context) error {
	w, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).Watch(ctx, metav1.ListOptions{
		LabelSelector: labelSupervisor,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	for event := range w.ResultChan() {
		pod, ok := event.Object.(*corev1.Pod)
		if !ok || event.Type == watch.Deleted {
			continue
		}
		c.reconcilePod(ctx, pod)
	}
	return nil
}

func (c *Controller) reconcilePod(ctx context.Context, pod *corev1.Pod) {
	logger := log.WithComponent("controller")

	if pod.DeletionTimestamp == nil && !hasFinalizer(pod, FinalizerName) {
		finalizers := append(append([]string{}, pod.Finalizers...), FinalizerName)
		patch, err := marshalFinalizersPatch(finalizers)
		if err != nil {
			return
		}
		if _, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).Patch(
			ctx, pod.Name, types.MergePatchType, patch, metav1.PatchOptions{},
		); err != nil {
			logger.Error().Msg("failed to add finalizer")
		}
		return
	}

	if pod.DeletionTimestamp != nil && pod.Annotations[annotationDrain] != "true" {
		patch := []byte(`{"metadata":{"annotations":{"drain":"true"}}}`)
		if _, err := c.params.Clientset.CoreV1().Pods(c.params.Namespace).Patch(
			ctx, pod.Name, types.MergePatchType, patch, metav1.PatchOptions{},
		); err != nil {
			logger.Error().Msg("failed to add drain annotation")
		}
	}
}
