package k8s

import (
	"context"
	"testing"
	"time"

	"github.com/opsfleet/process-supervisor/pkg/dispatcher"
	"github.com/opsfleet/process-supervisor/pkg/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newTestPod(name, namespace string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
}

func newTestSupervisorForK8s() *supervisor.Supervisor {
	client := dispatcher.NewClient("http://unused/obtain", "http://unused/report/{process_id}", "node-1")
	return supervisor.New(supervisor.Config{MaxChildren: 2, SigtermTimeoutSecs: 1, WorkerCommand: []string{"sleep", "5"}, DispatcherClient: client})
}

func TestReconcileAddsFinalizerWhenAbsent(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	r := NewReconciler(params, sup)

	r.reconcile(context.Background(), pod)

	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, got.Finalizers, FinalizerName)
}

func TestReconcileSetsDrainOnDeletion(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	now := metav1.NewTime(time.Now())
	pod.DeletionTimestamp = &now
	pod.Finalizers = []string{FinalizerName}

	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	r := NewReconciler(params, sup)

	r.reconcile(context.Background(), pod)

	assert.True(t, sup.Modes().IsDrain())
	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got.Annotations[annotationDrain])
}

func TestReconcileSetsTerminateOnAnnotation(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	pod.Finalizers = []string{FinalizerName}
	pod.Annotations = map[string]string{annotationTerminate: "true"}

	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	r := NewReconciler(params, sup)

	r.reconcile(context.Background(), pod)

	assert.True(t, sup.Modes().IsTerminate())
}

func TestCoordinatorFinishesOnDrainAndEmpty(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	pod.Finalizers = []string{FinalizerName}

	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	sup.Modes().SetDrain()

	exited := -1
	c := NewCoordinator(params, sup)
	c.exit = func(code int) { exited = code }

	c.tick(context.Background())

	assert.Equal(t, 0, exited)
	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got.Annotations[annotationFinished])
	assert.Empty(t, got.Finalizers)
}

func TestCoordinatorWaitsWhileDrainingWithChildren(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	sup.Modes().SetDrain()
	_, err := sup.Launch("a")
	require.NoError(t, err)

	exited := -1
	c := NewCoordinator(params, sup)
	c.exit = func(code int) { exited = code }

	c.tick(context.Background())

	assert.Equal(t, -1, exited)
}

func TestCoordinatorTerminateModeSkipsDrainCheck(t *testing.T) {
	pod := newTestPod("sup-0", "default")
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}
	sup := newTestSupervisorForK8s()
	sup.Modes().SetTerminate()
	_, err := sup.Launch("a")
	require.NoError(t, err)

	exited := -1
	c := NewCoordinator(params, sup)
	c.exit = func(code int) { exited = code }

	c.tick(context.Background())

	assert.Equal(t, 0, exited)
}
