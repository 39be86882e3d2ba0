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

func TestBootstrapLocalModeWithoutHostName(t *testing.T) {
	t.Setenv(envHostName, "")
	_, ok := Bootstrap()
	assert.False(t, ok)
}

func TestHasFinalizer(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Finalizers: []string{FinalizerName}}}
	assert.True(t, hasFinalizer(pod, FinalizerName))
	assert.False(t, hasFinalizer(pod, "other/finalizer"))
}

func TestAddFinalizerAddsToPod(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "sup-0", Namespace: "default"}}
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}

	require.NoError(t, addFinalizer(context.Background(), params, pod))

	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{FinalizerName}, got.Finalizers)
}

func TestClearFinalizersRemovesAll(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "sup-0", Namespace: "default", Finalizers: []string{FinalizerName}}}
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}

	require.NoError(t, clearFinalizers(context.Background(), params, "sup-0"))

	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Finalizers)
}

func TestMergePatchAnnotationSetsValue(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "sup-0", Namespace: "default"}}
	clientset := fake.NewSimpleClientset(pod)
	params := &Params{PodName: "sup-0", Namespace: "default", Clientset: clientset}

	require.NoError(t, mergePatchAnnotation(context.Background(), params, "sup-0", annotationDrain, "true"))

	got, err := clientset.CoreV1().Pods("default").Get(context.Background(), "sup-0", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got.Annotations[annotationDrain])
}
