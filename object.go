package kube

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ObjectList is the result of a List call: the matching objects in
// server order plus the list-level metadata.
type ObjectList[K any] struct {
	metav1.TypeMeta `json:",inline"`

	Metadata metav1.ListMeta `json:"metadata,omitempty"`
	Items    []K             `json:"items"`
}

// ResourceVersion is the snapshot marker of the list, usable as the
// starting point of a Watch.
func (l *ObjectList[K]) ResourceVersion() string { return l.Metadata.ResourceVersion }

// Continue is the pagination token for the next List page, empty when
// the list is complete.
func (l *ObjectList[K]) Continue() string { return l.Metadata.Continue }
