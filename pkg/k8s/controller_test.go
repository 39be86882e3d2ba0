package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newLabeledPod(name string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels:    labels,
		},
	}
}

func TestCheckTerminateAnnotationTrue(t *testing.T) {
	ctrlPod := newLabeledPod("controller-0", map[string]string{"controller": "true"})
	ctrlPod.Annotations = map[string]string{"terminate-all": "true"}
	clientset := fake.NewSimpleClientset(ctrlPod)
	c := NewController(&ControllerParams{Namespace: "default", Clientset: clientset})

	assert.True(t, c.checkTerminateAnnotation(context.Background()))
}

func TestCheckTerminateAnnotationAbsent(t *testing.T) {
	ctrlPod := newLabeledPod("controller-0", map[string]string{"controller": "true"})
	clientset := fake.NewSimpleClientset(ctrlPod)
	c := NewController(&ControllerParams{Namespace: "default", Clientset: clientset})

	assert.False(t, c.checkTerminateAnnotation(context.Background()))
}

func TestTerminateSupervisorsMarksEveryPod(t *testing.T) {
	pod1 := newLabeledPod("sup-1", map[string]string{"supervisor": "true"})
	pod2 := newLabeledPod("sup-2", map[string]string{"supervisor": "true"})
	clientset := fake.NewSimpleClientset(pod1, pod2)
	c := NewController(&ControllerParams{Namespace: "default", Clientset: clientset})

	c.terminateSupervisors(context.Background())

	got1, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got1.Annotations["terminate"])

	got2, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-2", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got2.Annotations["terminate"])
}

func TestReconcilePodAddsFinalizer(t *testing.T) {
	pod := newLabeledPod("sup-1", map[string]string{"supervisor": "true"})
	clientset := fake.NewSimpleClientset(pod)
	c := NewController(&ControllerParams{Namespace: "default", Clientset: clientset})

	c.reconcilePod(context.Background(), pod)

	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, got.Finalizers, FinalizerName)
}
