// Package k8s implements the orchestrator-facing components: the
// per-supervisor reconciler (I), the shutdown coordinator (J), and the
// companion fleet controller. It is enriched into this module from the
// client-go/apimachinery stack used elsewhere in the example pack, since the
// process-supervisor teacher repo has no Kubernetes dependency of its own.
package k8s

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/opsfleet/process-supervisor/pkg/log"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const (
	// FinalizerName blocks the orchestrator from deleting the pod until the
	// shutdown coordinator removes it.
	FinalizerName = "process-supervisor/finalizer"

	namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	envHostName   = "HOST_NAME"

	annotationDrain     = "drain"
	annotationTerminate = "terminate"
	annotationFinished  = "finished"

	labelSupervisor = "supervisor=true"
)

// Params bootstraps the orchestrator client: the supervisor's own pod name
// (from HOST_NAME, per external-interfaces), its namespace (from the
// service-account namespace file), and a clientset.
type Params struct {
	PodName   string
	Namespace string
	Clientset kubernetes.Interface
}

// Bootstrap resolves Params for in-cluster operation. It returns ok=false,
// without error, when the orchestrator client is simply unavailable
// (missing service-account files, no in-cluster config) — callers should
// treat that as "run in local mode": G, F, H and the HTTP surface still
// work, but I and J do not start.
func Bootstrap() (*Params, bool) {
	logger := log.WithComponent("k8s")

	podName := os.Getenv(envHostName)
	if podName == "" {
		logger.Info().Msg("HOST_NAME unset; running in local mode")
		return nil, false
	}

	nsBytes, err := os.ReadFile(namespaceFile)
	if err != nil {
		logger.Info().Err(err).Msg("service-account namespace file unavailable; running in local mode")
		return nil, false
	}
	namespace := strings.TrimSpace(string(nsBytes))

	restCfg, err := rest.InClusterConfig()
	if err != nil {
		logger.Info().Err(err).Msg("in-cluster config unavailable; running in local mode")
		return nil, false
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		logger.Info().Err(err).Msg("failed to build orchestrator clientset; running in local mode")
		return nil, false
	}

	return &Params{PodName: podName, Namespace: namespace, Clientset: clientset}, true
}

func getSelfPod(ctx context.Context, p *Params) (*corev1.Pod, error) {
	return p.Clientset.CoreV1().Pods(p.Namespace).Get(ctx, p.PodName, metav1.GetOptions{})
}

func mergePatchAnnotation(ctx context.Context, p *Params, podName, key, value string) error {
	patch := []byte(`{"metadata":{"annotations":{"` + key + `":"` + value + `"}}}`)
	_, err := p.Clientset.CoreV1().Pods(p.Namespace).Patch(ctx, podName, types.MergePatchType, patch, metav1.PatchOptions{})
	return err
}

func hasFinalizer(pod *corev1.Pod, name string) bool {
	for _, f := range pod.Finalizers {
		if f == name {
			return true
		}
	}
	return false
}

func addFinalizer(ctx context.Context, p *Params, pod *corev1.Pod) error {
	finalizers := append(append([]string{}, pod.Finalizers...), FinalizerName)
	patch, err := marshalFinalizersPatch(finalizers)
	if err != nil {
		return err
	}
	_, err = p.Clientset.CoreV1().Pods(p.Namespace).Patch(ctx, pod.Name, types.MergePatchType, patch, metav1.PatchOptions{})
	return err
}

func clearFinalizers(ctx context.Context, p *Params, podName string) error {
	patch := []byte(`{"metadata":{"finalizers":null}}`)
	_, err := p.Clientset.CoreV1().Pods(p.Namespace).Patch(ctx, podName, types.MergePatchType, patch, metav1.PatchOptions{})
	return err
}

type finalizersPatch struct {
	Metadata struct {
		Finalizers []string `json:"finalizers"`
	} `json:"metadata"`
}

func marshalFinalizersPatch(finalizers []string) ([]byte, error) {
	var p finalizersPatch
	p.Metadata.Finalizers = finalizers
	return json.Marshal(p)
}
