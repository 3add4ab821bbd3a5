// Package vision implements the small set of image measurements the content
// heuristics need: grayscale statistics, 2D hue/saturation histograms with
// correlation comparison, Canny edge maps, connected edge contours with
// convex-hull geometry, and a Hough line count.
//
// Conventions follow the 8-bit OpenCV ones the thresholds were tuned against:
// hue spans [0,180), saturation and value span [0,256), grayscale uses the
// ITU-R BT.601 luma weights, and Canny uses a 3x3 Sobel with L1 magnitude.
package vision
