// Package detection provides body landmark detectors.
//
// A Detector takes one decoded image and returns a pose.LandmarkSet with
// coordinates normalized to the image size, or nil when no person is found.
// Detectors are constructed once, shared, and closed by their owner.
//
// # Backends
//
//   - openpose: OpenCV DNN inference of the OpenPose COCO body model. It is
//     compiled only with the gocv build tag because it needs OpenCV 4 via cgo.
//     Each of the 18 output heatmaps contributes its peak as one keypoint;
//     peaks under ConfidenceThresh are left out of the set.
//   - fixture: replays a landmark list from a JSON file. Used for demos
//     without a model and as the fake detector in tests.
//
// # Color Order
//
// Go images are RGB. The OpenPose backend converts to an OpenCV BGR Mat and
// feeds it to the network without swapping channels, matching how the model
// was trained.
package detection
